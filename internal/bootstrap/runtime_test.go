package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"foodcrimes/internal/config"
	"foodcrimes/internal/models"
	"foodcrimes/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "PF.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Preparation,Food\nGrilled,Cake\nFrozen,Soup\n"), 0o600))
	return &config.Config{
		DBDriver:    "sqlite",
		SQLitePath:  filepath.Join(dir, "foodcrimes.db"),
		SeedCSVPath: csvPath,
	}
}

func TestInitRuntime_SeedsEmptyCatalog(t *testing.T) {
	cfg := sqliteConfig(t)

	db, rdb, err := InitRuntime(context.Background(), cfg, Options{SeedCatalog: true})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	n, err := repository.NewCatalogRepository(db).Count(context.Background(), models.CatalogFood)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestInitRuntime_MissingSeedFile(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.SeedCSVPath = filepath.Join(t.TempDir(), "nope.csv")

	_, _, err := InitRuntime(context.Background(), cfg, Options{SeedCatalog: true})
	require.NoError(t, err)

	_, _, err = InitRuntime(context.Background(), cfg, Options{ForceSeed: true})
	assert.Error(t, err)
}
