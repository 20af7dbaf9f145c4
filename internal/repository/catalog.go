// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"fmt"
	"strings"

	"foodcrimes/internal/models"
	"foodcrimes/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository defines persistence operations for the foods and preparations catalogs.
type CatalogRepository interface {
	WithTx(tx *gorm.DB) CatalogRepository
	List(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error)
	Count(ctx context.Context, kind models.CatalogKind) (int64, error)
	InsertIfAbsent(ctx context.Context, kind models.CatalogKind, name string) (bool, error)
	InsertManyIfAbsent(ctx context.Context, kind models.CatalogKind, names []string) (int64, error)
	MatchNames(ctx context.Context, kind models.CatalogKind, lowered []string) ([]string, error)
	RandomNames(ctx context.Context, kind models.CatalogKind, n int) ([]string, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository returns a new CatalogRepository implementation.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) WithTx(tx *gorm.DB) CatalogRepository {
	return &catalogRepository{db: tx}
}

// model resolves the gorm model for kind. Table names never come from input.
func model(kind models.CatalogKind) (interface{}, error) {
	switch kind {
	case models.CatalogFood:
		return &models.Food{}, nil
	case models.CatalogPreparation:
		return &models.Preparation{}, nil
	}
	return nil, models.NewInvalidArgumentError(fmt.Sprintf("unknown catalog %q", kind))
}

func newRow(kind models.CatalogKind, name string) interface{} {
	if kind == models.CatalogPreparation {
		return &models.Preparation{Name: name}
	}
	return &models.Food{Name: name}
}

func onNameConflict() clause.OnConflict {
	return clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}
}

func (r *catalogRepository) List(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error) {
	m, err := model(kind)
	if err != nil {
		return nil, err
	}
	defer observability.TrackQuery("list", kind.Table())()

	items := make([]models.CatalogItem, 0)
	if err := r.db.WithContext(ctx).Model(m).Order("id ASC").Find(&items).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return items, nil
}

func (r *catalogRepository) Count(ctx context.Context, kind models.CatalogKind) (int64, error) {
	m, err := model(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
		return 0, models.NewStoreError(err)
	}
	return n, nil
}

// InsertIfAbsent adds name to the catalog. An existing name is a silent no-op
// and reports false.
func (r *catalogRepository) InsertIfAbsent(ctx context.Context, kind models.CatalogKind, name string) (bool, error) {
	if _, err := model(kind); err != nil {
		return false, err
	}
	defer observability.TrackQuery("insert", kind.Table())()

	res := r.db.WithContext(ctx).Clauses(onNameConflict()).Create(newRow(kind, name))
	if res.Error != nil {
		return false, models.NewStoreError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// InsertManyIfAbsent bulk-inserts names, skipping blanks and existing entries.
func (r *catalogRepository) InsertManyIfAbsent(ctx context.Context, kind models.CatalogKind, names []string) (int64, error) {
	if _, err := model(kind); err != nil {
		return 0, err
	}

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			res := tx.Clauses(onNameConflict()).Create(newRow(kind, name))
			if res.Error != nil {
				return res.Error
			}
			inserted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, models.NewStoreError(err)
	}
	return inserted, nil
}

// MatchNames returns the lower-cased catalog names equal to any of lowered.
// Names are folded in Go since SQL LOWER only folds ASCII on SQLite and on
// Postgres C-collated databases.
func (r *catalogRepository) MatchNames(ctx context.Context, kind models.CatalogKind, lowered []string) ([]string, error) {
	m, err := model(kind)
	if err != nil {
		return nil, err
	}
	if len(lowered) == 0 {
		return nil, nil
	}
	defer observability.TrackQuery("match", kind.Table())()

	want := make(map[string]struct{}, len(lowered))
	for _, w := range lowered {
		want[w] = struct{}{}
	}

	var names []string
	if err := r.db.WithContext(ctx).Model(m).
		Order("id ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	matched := make([]string, 0, len(lowered))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := want[key]; ok {
			matched = append(matched, key)
		}
	}
	return matched, nil
}

// RandomNames returns up to n names drawn uniformly at random.
func (r *catalogRepository) RandomNames(ctx context.Context, kind models.CatalogKind, n int) ([]string, error) {
	m, err := model(kind)
	if err != nil {
		return nil, err
	}
	defer observability.TrackQuery("random", kind.Table())()

	var names []string
	if err := r.db.WithContext(ctx).Model(m).
		Order("RANDOM()").
		Limit(n).
		Pluck("name", &names).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return names, nil
}
