package repository

import (
	"context"
	"errors"

	"foodcrimes/internal/models"
	"foodcrimes/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxDailyImageHistory = 60

// DailyImageRepository defines persistence operations for daily images.
type DailyImageRepository interface {
	WithTx(tx *gorm.DB) DailyImageRepository
	GetByDate(ctx context.Context, date string) (*models.DailyImage, error)
	Latest(ctx context.Context) (*models.DailyImage, error)
	List(ctx context.Context, limit int) ([]models.DailyImage, error)
	InsertIfAbsent(ctx context.Context, img *models.DailyImage) (bool, error)
}

type dailyImageRepository struct {
	db *gorm.DB
}

// NewDailyImageRepository returns a new DailyImageRepository implementation.
func NewDailyImageRepository(db *gorm.DB) DailyImageRepository {
	return &dailyImageRepository{db: db}
}

func (r *dailyImageRepository) WithTx(tx *gorm.DB) DailyImageRepository {
	return &dailyImageRepository{db: tx}
}

func (r *dailyImageRepository) GetByDate(ctx context.Context, date string) (*models.DailyImage, error) {
	var img models.DailyImage
	if err := r.db.WithContext(ctx).Where("generation_date = ?", date).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("DailyImage", date)
		}
		return nil, models.NewStoreError(err)
	}
	return &img, nil
}

func (r *dailyImageRepository) Latest(ctx context.Context) (*models.DailyImage, error) {
	var img models.DailyImage
	if err := r.db.WithContext(ctx).Order("generation_date DESC").First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.AppError{Code: models.CodeNotFound, Message: "No daily image found"}
		}
		return nil, models.NewStoreError(err)
	}
	return &img, nil
}

// List returns the newest images first, capped at maxDailyImageHistory.
func (r *dailyImageRepository) List(ctx context.Context, limit int) ([]models.DailyImage, error) {
	if limit <= 0 || limit > maxDailyImageHistory {
		limit = maxDailyImageHistory
	}
	out := make([]models.DailyImage, 0)
	if err := r.db.WithContext(ctx).Order("generation_date DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return out, nil
}

// InsertIfAbsent stores img unless a row for its generation date already
// exists; in that case nothing is written and false is returned.
func (r *dailyImageRepository) InsertIfAbsent(ctx context.Context, img *models.DailyImage) (bool, error) {
	defer observability.TrackQuery("insert", "daily_images")()

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "generation_date"}},
		DoNothing: true,
	}).Create(img)
	if res.Error != nil {
		return false, models.NewStoreError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
