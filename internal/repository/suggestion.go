package repository

import (
	"context"
	"errors"

	"foodcrimes/internal/models"
	"foodcrimes/internal/observability"

	"gorm.io/gorm"
)

// SuggestionRepository defines persistence operations for the suggestion queue.
type SuggestionRepository interface {
	WithTx(tx *gorm.DB) SuggestionRepository
	Create(ctx context.Context, s *models.Suggestion) error
	GetByID(ctx context.Context, id uint) (*models.Suggestion, error)
	List(ctx context.Context, status models.SuggestionStatus) ([]models.Suggestion, error)
	Update(ctx context.Context, s *models.Suggestion) error
	Delete(ctx context.Context, id uint) error
}

type suggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository returns a new SuggestionRepository implementation.
func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) WithTx(tx *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: tx}
}

func (r *suggestionRepository) Create(ctx context.Context, s *models.Suggestion) error {
	defer observability.TrackQuery("insert", "suggestions")()
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *suggestionRepository) GetByID(ctx context.Context, id uint) (*models.Suggestion, error) {
	var s models.Suggestion
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Suggestion", id)
		}
		return nil, models.NewStoreError(err)
	}
	return &s, nil
}

// List returns suggestions in submission order; an empty status returns all.
func (r *suggestionRepository) List(ctx context.Context, status models.SuggestionStatus) ([]models.Suggestion, error) {
	defer observability.TrackQuery("list", "suggestions")()

	q := r.db.WithContext(ctx).Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := make([]models.Suggestion, 0)
	if err := q.Find(&out).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return out, nil
}

// Update persists the item and status of s.
func (r *suggestionRepository) Update(ctx context.Context, s *models.Suggestion) error {
	res := r.db.WithContext(ctx).Model(&models.Suggestion{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{"item": s.Item, "status": s.Status})
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Suggestion", s.ID)
	}
	return nil
}

func (r *suggestionRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "suggestions")()
	res := r.db.WithContext(ctx).Delete(&models.Suggestion{}, id)
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Suggestion", id)
	}
	return nil
}
