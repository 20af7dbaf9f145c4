package testutil

import (
	"testing"

	"foodcrimes/internal/models"

	"gorm.io/gorm"
)

// SeedCatalog inserts foods and preparations directly.
func SeedCatalog(t *testing.T, db *gorm.DB, foods, preps []string) {
	t.Helper()
	for _, f := range foods {
		if err := db.Create(&models.Food{Name: f}).Error; err != nil {
			t.Fatalf("seed food %q: %v", f, err)
		}
	}
	for _, p := range preps {
		if err := db.Create(&models.Preparation{Name: p}).Error; err != nil {
			t.Fatalf("seed preparation %q: %v", p, err)
		}
	}
}
