package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validConfig() *Config {
	return &Config{
		Port:           "8080",
		Env:            "development",
		DBDriver:       "sqlite",
		AdminUsername:  "admin",
		AdminPassword:  "correct-horse-battery",
		ImageBackend:   "gemini",
		StorageBackend: "local",
		DailyRunAt:     "06:00",
		DailyTimezone:  "UTC",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing admin username", func(c *Config) { c.AdminUsername = " " }, true},
		{"missing admin credentials", func(c *Config) { c.AdminPassword = "" }, true},
		{"hash only", func(c *Config) { c.AdminPassword = ""; c.AdminPasswordHash = "$2a$10$abc" }, false},
		{"unknown db driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"unknown image backend", func(c *Config) { c.ImageBackend = "dalle" }, true},
		{"supabase without key", func(c *Config) { c.StorageBackend = "supabase"; c.SupabaseURL = "https://x.supabase.co" }, true},
		{"supabase configured", func(c *Config) {
			c.StorageBackend = "supabase"
			c.SupabaseURL = "https://x.supabase.co"
			c.SupabaseServiceKey = "key"
		}, false},
		{"s3 without bucket", func(c *Config) { c.StorageBackend = "s3" }, true},
		{"unknown storage backend", func(c *Config) { c.StorageBackend = "ftp" }, true},
		{"bad run at", func(c *Config) { c.DailyRunAt = "6am" }, true},
		{"bad timezone", func(c *Config) { c.DailyTimezone = "Mars/Olympus" }, true},
		{"production default password", func(c *Config) { c.Env = "production"; c.AdminPassword = "password" }, true},
		{"production short password", func(c *Config) { c.Env = "production"; c.AdminPassword = "short" }, true},
		{"production sqlite strong password", func(c *Config) { c.Env = "production"; c.AdminPassword = "a-long-admin-password" }, false},
		{"production postgres default db password", func(c *Config) {
			c.Env = "prod"
			c.AdminPassword = "a-long-admin-password"
			c.DBDriver = "postgres"
			c.DBPassword = "password"
		}, true},
		{"production postgres via url", func(c *Config) {
			c.Env = "prod"
			c.AdminPassword = "a-long-admin-password"
			c.DBDriver = "postgres"
			c.DatabaseURL = "postgres://u:p@db/foodcrimes"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Location(t *testing.T) {
	c := validConfig()
	assert.Equal(t, time.UTC, c.Location())

	c.DailyTimezone = "America/New_York"
	assert.Equal(t, "America/New_York", c.Location().String())

	c.DailyTimezone = "nowhere"
	assert.Equal(t, time.UTC, c.Location())
}

func TestLoadConfig_Normalization(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("IMAGE_GENERATION_TIMEOUT", "45s")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 45*time.Second, c.ImageGenerationTimeout)
	assert.Equal(t, "local", c.StorageBackend)
}

func TestConfig_ValidateAcceptsBcryptHashInProduction(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	c := validConfig()
	c.Env = "production"
	c.AdminPassword = ""
	c.AdminPasswordHash = string(hash)
	assert.NoError(t, c.Validate())
}
