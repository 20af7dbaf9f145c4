package service

import (
	"context"
	"errors"
	"testing"

	"foodcrimes/internal/models"
	"foodcrimes/internal/repository"
	"foodcrimes/internal/testutil"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newModeration(t *testing.T) (*ModerationService, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db := testutil.NewDB(t)
	events := &recordingPublisher{}
	svc := NewModerationService(db,
		repository.NewSuggestionRepository(db),
		repository.NewCatalogRepository(db),
		events)
	return svc, db, events
}

func submit(t *testing.T, svc *ModerationService, item, kind string) *models.Suggestion {
	t.Helper()
	sug, err := svc.Submit(context.Background(), SubmitInput{Item: item, Status: "pending", Date: "2024-01-01", Type: kind})
	require.NoError(t, err)
	return sug
}

func TestModeration_Submit(t *testing.T) {
	svc, _, events := newModeration(t)
	ctx := context.Background()

	t.Run("echoes fields", func(t *testing.T) {
		sug, err := svc.Submit(ctx, SubmitInput{Item: "Pineapple on Pizza", Status: "pending", Date: "2024-01-01", Type: "food"})
		require.NoError(t, err)
		assert.NotZero(t, sug.ID)
		assert.Equal(t, "Pineapple on Pizza", sug.Item)
		assert.Equal(t, models.SuggestionStatusPending, sug.Status)
		assert.Equal(t, "2024-01-01", sug.Date)
		assert.Equal(t, models.CatalogFood, sug.Type)
	})

	t.Run("type defaults to food", func(t *testing.T) {
		sug, err := svc.Submit(ctx, SubmitInput{Item: gofakeit.Fruit(), Status: "pending", Date: "2024-01-02"})
		require.NoError(t, err)
		assert.Equal(t, models.CatalogFood, sug.Type)
	})

	t.Run("plural type is normalized", func(t *testing.T) {
		sug, err := svc.Submit(ctx, SubmitInput{Item: "Flambéed", Status: "pending", Date: "2024-01-02", Type: "Preparations"})
		require.NoError(t, err)
		assert.Equal(t, models.CatalogPreparation, sug.Type)
	})

	invalid := []struct {
		name string
		in   SubmitInput
	}{
		{"missing item", SubmitInput{Status: "pending", Date: "2024-01-01"}},
		{"blank item", SubmitInput{Item: "  ", Status: "pending", Date: "2024-01-01"}},
		{"missing status", SubmitInput{Item: "x", Date: "2024-01-01"}},
		{"missing date", SubmitInput{Item: "x", Status: "pending"}},
		{"bad status", SubmitInput{Item: "x", Status: "maybe", Date: "2024-01-01"}},
		{"bad type", SubmitInput{Item: "x", Status: "pending", Date: "2024-01-01", Type: "drink"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.in)
			assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
		})
	}

	assert.Equal(t, 3, len(events.Types()))
}

func TestModeration_List(t *testing.T) {
	svc, _, _ := newModeration(t)
	ctx := context.Background()
	submit(t, svc, "a", "food")
	_, err := svc.Submit(ctx, SubmitInput{Item: "b", Status: "approved", Date: "2024-01-01"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(ctx, "PENDING")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.List(ctx, "lost")
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestModeration_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("moves suggestion into catalog", func(t *testing.T) {
		svc, db, events := newModeration(t)
		sug := submit(t, svc, "Raw", "preparation")

		res, err := svc.Approve(ctx, ApproveInput{ID: sug.ID, Item: "Raw", Type: "preparation"})
		require.NoError(t, err)
		assert.True(t, res.Added)
		assert.Equal(t, models.CatalogPreparation, res.Kind)

		var prep models.Preparation
		require.NoError(t, db.Where("name = ?", "Raw").First(&prep).Error)
		var count int64
		db.Model(&models.Suggestion{}).Where("id = ?", sug.ID).Count(&count)
		assert.Zero(t, count)
		assert.Contains(t, events.Types(), "suggestion.approved")
	})

	t.Run("existing catalog entry is a no-op", func(t *testing.T) {
		svc, db, _ := newModeration(t)
		testutil.SeedCatalog(t, db, []string{"Pizza"}, nil)
		sug := submit(t, svc, "Pizza", "food")

		res, err := svc.Approve(ctx, ApproveInput{ID: sug.ID, Item: "Pizza", Type: "foods"})
		require.NoError(t, err)
		assert.False(t, res.Added)

		var count int64
		db.Model(&models.Food{}).Where("name = ?", "Pizza").Count(&count)
		assert.EqualValues(t, 1, count)
		db.Model(&models.Suggestion{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("blank item uses the suggestion text", func(t *testing.T) {
		svc, db, _ := newModeration(t)
		sug := submit(t, svc, "Hot Dog", "food")

		res, err := svc.Approve(ctx, ApproveInput{ID: sug.ID, Type: "food"})
		require.NoError(t, err)
		assert.Equal(t, "Hot Dog", res.Item)
		var food models.Food
		assert.NoError(t, db.Where("name = ?", "Hot Dog").First(&food).Error)
	})

	t.Run("invalid type", func(t *testing.T) {
		svc, _, _ := newModeration(t)
		for _, typ := range []string{"", "drink", "food s"} {
			_, err := svc.Approve(ctx, ApproveInput{ID: 1, Item: "x", Type: typ})
			assert.True(t, models.IsCode(err, models.CodeInvalidArgument), "type %q: %v", typ, err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		svc, _, _ := newModeration(t)
		_, err := svc.Approve(ctx, ApproveInput{Item: "x", Type: "food"})
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("unknown suggestion", func(t *testing.T) {
		svc, db, _ := newModeration(t)
		_, err := svc.Approve(ctx, ApproveInput{ID: 42, Item: "Ghost", Type: "food"})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		var count int64
		db.Model(&models.Food{}).Count(&count)
		assert.Zero(t, count)
	})
}

type failingDeletes struct {
	repository.SuggestionRepository
}

func (f failingDeletes) WithTx(tx *gorm.DB) repository.SuggestionRepository {
	return failingDeletes{f.SuggestionRepository.WithTx(tx)}
}

func (f failingDeletes) Delete(context.Context, uint) error {
	return models.NewStoreError(errors.New("disk full"))
}

func TestModeration_ApproveRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	suggestions := repository.NewSuggestionRepository(db)
	sug := &models.Suggestion{Item: "Sushi", Status: models.SuggestionStatusPending, Date: "2024-01-01", Type: models.CatalogFood}
	require.NoError(t, suggestions.Create(context.Background(), sug))

	svc := NewModerationService(db, failingDeletes{suggestions}, repository.NewCatalogRepository(db), nil)
	_, err := svc.Approve(context.Background(), ApproveInput{ID: sug.ID, Item: "Sushi", Type: "food"})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeStore))

	var count int64
	db.Model(&models.Food{}).Where("name = ?", "Sushi").Count(&count)
	assert.Zero(t, count, "catalog insert must be rolled back")
	db.Model(&models.Suggestion{}).Where("id = ?", sug.ID).Count(&count)
	assert.EqualValues(t, 1, count, "suggestion must remain queued")
}

func TestModeration_Reject(t *testing.T) {
	svc, db, _ := newModeration(t)
	ctx := context.Background()
	sug := submit(t, svc, "Ketchup Ice Cream", "food")

	require.NoError(t, svc.Reject(ctx, sug.ID))
	var count int64
	db.Model(&models.Suggestion{}).Count(&count)
	assert.Zero(t, count)

	err := svc.Reject(ctx, sug.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = svc.Reject(ctx, 0)
	require.True(t, models.IsCode(err, models.CodeValidation))
	assert.Equal(t, "Missing suggestion id", err.Error())
}

func TestModeration_Update(t *testing.T) {
	svc, _, _ := newModeration(t)
	ctx := context.Background()
	sug := submit(t, svc, "Pickles", "food")

	got, err := svc.Update(ctx, UpdateInput{ID: sug.ID, Item: "Pickled Pickles"})
	require.NoError(t, err)
	assert.Equal(t, "Pickled Pickles", got.Item)
	assert.Equal(t, models.SuggestionStatusPending, got.Status)

	got, err = svc.Update(ctx, UpdateInput{ID: sug.ID, Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "Pickled Pickles", got.Item)
	assert.Equal(t, models.SuggestionStatusRejected, got.Status)

	_, err = svc.Update(ctx, UpdateInput{ID: sug.ID, Status: "bogus"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.Update(ctx, UpdateInput{ID: 999, Item: "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = svc.Update(ctx, UpdateInput{Item: "x"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}
