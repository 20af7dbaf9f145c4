// Package bootstrap wires the shared runtime (database, Redis, seed data)
// used by every command.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"foodcrimes/internal/cache"
	"foodcrimes/internal/config"
	"foodcrimes/internal/database"
	"foodcrimes/internal/middleware"
	"foodcrimes/internal/repository"
	"foodcrimes/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCatalog imports SEED_CSV_PATH when the catalogs are empty.
	SeedCatalog bool
	// ForceSeed imports even when the catalogs already contain rows.
	ForceSeed bool
}

// InitRuntime connects to the database and Redis and optionally seeds the catalogs.
// The returned Redis client is nil when Redis is disabled or unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedCatalog || opts.ForceSeed {
		if err := seedCatalog(ctx, cfg, db, opts.ForceSeed); err != nil {
			return nil, nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	return db, r, nil
}

func seedCatalog(ctx context.Context, cfg *config.Config, db *gorm.DB, force bool) error {
	if cfg.SeedCSVPath == "" {
		return nil
	}
	if _, err := os.Stat(cfg.SeedCSVPath); errors.Is(err, os.ErrNotExist) {
		if force {
			return fmt.Errorf("seed file %s not found", cfg.SeedCSVPath)
		}
		middleware.Logger.Warn("Seed file not found, skipping catalog import", "path", cfg.SeedCSVPath)
		return nil
	}
	_, err := seed.CatalogFromCSV(ctx, repository.NewCatalogRepository(db), cfg.SeedCSVPath, force)
	return err
}
