package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"foodcrimes/internal/config"
	"foodcrimes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "crimes",
		DBPassword: "pw",
		DBName:     "foodcrimes",
	}
	assert.Equal(t, "host=db port=5432 user=crimes password=pw dbname=foodcrimes sslmode=disable", PostgresDSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, PostgresDSN(cfg), "sslmode=require")

	cfg.DatabaseURL = "postgres://u:p@host/db"
	assert.Equal(t, "postgres://u:p@host/db", PostgresDSN(cfg))
}

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "crimes.db"),
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Ping(context.Background(), db))
	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "expected table for %T", m)
	}

	require.NoError(t, db.Create(&models.DailyImage{GenerationDate: "2024-01-01", FoodCombination: "a", PublicURL: "u"}).Error)
	err = db.Create(&models.DailyImage{GenerationDate: "2024-01-01", FoodCombination: "b", PublicURL: "v"}).Error
	assert.Error(t, err, "generation_date must be unique")
}

func TestCustomGormLogger_Trace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Empty(t, buf.String(), "fast successful queries are not logged at warn level")

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	silent := l.LogMode(logger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
