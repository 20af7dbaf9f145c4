// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAdminPassword = "password"
	defaultImageModel    = "imagen-3.0-generate-002"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	AdminUsername     string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword     string `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	ImageBackend           string        `mapstructure:"IMAGE_BACKEND"`
	GeminiAPIKey           string        `mapstructure:"GEMINI_API_KEY"`
	GCPProjectID           string        `mapstructure:"GCP_PROJECT_ID"`
	GCPLocation            string        `mapstructure:"GCP_LOCATION"`
	ImageModel             string        `mapstructure:"IMAGE_MODEL"`
	ImageGenerationTimeout time.Duration `mapstructure:"IMAGE_GENERATION_TIMEOUT"`
	ImageMaxDimension      int           `mapstructure:"IMAGE_MAX_DIMENSION"`
	PromptScenesFile       string        `mapstructure:"PROMPT_SCENES_FILE"`

	StorageBackend      string        `mapstructure:"STORAGE_BACKEND"`
	SupabaseURL         string        `mapstructure:"SUPABASE_URL"`
	SupabaseServiceKey  string        `mapstructure:"SUPABASE_SERVICE_KEY"`
	SupabaseBucket      string        `mapstructure:"SUPABASE_BUCKET"`
	S3Bucket            string        `mapstructure:"S3_BUCKET"`
	S3Region            string        `mapstructure:"S3_REGION"`
	S3PublicBaseURL     string        `mapstructure:"S3_PUBLIC_BASE_URL"`
	LocalStorageDir     string        `mapstructure:"LOCAL_STORAGE_DIR"`
	LocalPublicBaseURL  string        `mapstructure:"LOCAL_PUBLIC_BASE_URL"`
	ImageUploadTimeout  time.Duration `mapstructure:"IMAGE_UPLOAD_TIMEOUT"`
	DailyScheduleEnable bool          `mapstructure:"DAILY_IMAGE_SCHEDULE_ENABLED"`
	DailyRunAt          string        `mapstructure:"DAILY_IMAGE_RUN_AT"`
	DailyTimezone       string        `mapstructure:"DAILY_IMAGE_TIMEZONE"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`

	SeedCSVPath string `mapstructure:"SEED_CSV_PATH"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The base config file is optional.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))
	config.DBDriver = strings.ToLower(strings.TrimSpace(config.DBDriver))
	config.StorageBackend = strings.ToLower(strings.TrimSpace(config.StorageBackend))
	config.ImageBackend = strings.ToLower(strings.TrimSpace(config.ImageBackend))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	v.SetDefault("FEATURE_FLAGS", "duplicate_check=on,suggestion_rate_limit=on")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "foodcrimes")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "crimes.db")
	v.SetDefault("REDIS_URL", "localhost:6379")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", defaultAdminPassword)
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("IMAGE_BACKEND", "gemini")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GCP_PROJECT_ID", "")
	v.SetDefault("GCP_LOCATION", "us-central1")
	v.SetDefault("IMAGE_MODEL", defaultImageModel)
	v.SetDefault("IMAGE_GENERATION_TIMEOUT", 90*time.Second)
	v.SetDefault("IMAGE_MAX_DIMENSION", 1024)
	v.SetDefault("PROMPT_SCENES_FILE", "")

	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_SERVICE_KEY", "")
	v.SetDefault("SUPABASE_BUCKET", "daily-images")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
	v.SetDefault("LOCAL_STORAGE_DIR", "uploads")
	v.SetDefault("LOCAL_PUBLIC_BASE_URL", "http://localhost:8080/uploads")
	v.SetDefault("IMAGE_UPLOAD_TIMEOUT", 30*time.Second)
	v.SetDefault("DAILY_IMAGE_SCHEDULE_ENABLED", false)
	v.SetDefault("DAILY_IMAGE_RUN_AT", "06:00")
	v.SetDefault("DAILY_IMAGE_TIMEZONE", "UTC")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	v.SetDefault("SEED_CSV_PATH", "PF.csv")
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Location resolves DAILY_IMAGE_TIMEZONE, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.DailyTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.DailyTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if strings.TrimSpace(c.AdminUsername) == "" {
		return errors.New("ADMIN_USERNAME is required")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}

	switch c.ImageBackend {
	case "gemini", "vertex":
	default:
		return fmt.Errorf("IMAGE_BACKEND must be gemini or vertex, got %q", c.ImageBackend)
	}

	switch c.StorageBackend {
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase storage backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage backend")
		}
	case "local":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be supabase, s3 or local, got %q", c.StorageBackend)
	}

	if _, err := time.Parse("15:04", c.DailyRunAt); err != nil {
		return fmt.Errorf("DAILY_IMAGE_RUN_AT must be HH:MM: %w", err)
	}
	if _, err := time.LoadLocation(c.DailyTimezone); err != nil {
		return fmt.Errorf("DAILY_IMAGE_TIMEZONE is invalid: %w", err)
	}

	if c.IsProduction() {
		if c.AdminPasswordHash == "" && (c.AdminPassword == defaultAdminPassword || len(c.AdminPassword) < 12) {
			return errors.New("a strong ADMIN_PASSWORD or an ADMIN_PASSWORD_HASH is required in production")
		}
		if c.DBDriver == "postgres" && c.DatabaseURL == "" && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.StorageBackend == "local" {
			log.Println("WARNING: STORAGE_BACKEND is 'local' in production. Daily images will only be served from this host.")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if c.AdminPasswordHash == "" && c.AdminPassword == defaultAdminPassword {
		log.Println("WARNING: ADMIN_PASSWORD is the default value. Set ADMIN_PASSWORD or ADMIN_PASSWORD_HASH before deploying.")
	}

	return nil
}
