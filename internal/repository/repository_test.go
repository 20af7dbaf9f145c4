package repository

import (
	"context"
	"testing"

	"foodcrimes/internal/models"
	"foodcrimes/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestCatalogRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	t.Run("InsertIfAbsent", func(t *testing.T) {
		added, err := repo.InsertIfAbsent(ctx, models.CatalogFood, "Pizza")
		require.NoError(t, err)
		assert.True(t, added)

		added, err = repo.InsertIfAbsent(ctx, models.CatalogFood, "Pizza")
		require.NoError(t, err)
		assert.False(t, added)

		n, err := repo.Count(ctx, models.CatalogFood)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("InsertManyIfAbsent", func(t *testing.T) {
		n, err := repo.InsertManyIfAbsent(ctx, models.CatalogPreparation, []string{"Deep-fried", " ", "Frozen", "Deep-fried"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("List", func(t *testing.T) {
		items, err := repo.List(ctx, models.CatalogPreparation)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Deep-fried", items[0].Name)
		assert.Equal(t, "Frozen", items[1].Name)
	})

	t.Run("MatchNames is case-insensitive", func(t *testing.T) {
		names, err := repo.MatchNames(ctx, models.CatalogFood, []string{"pizza", "sushi"})
		require.NoError(t, err)
		assert.Equal(t, []string{"pizza"}, names)

		names, err = repo.MatchNames(ctx, models.CatalogFood, nil)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("MatchNames folds non-ASCII names", func(t *testing.T) {
		_, err := repo.InsertIfAbsent(ctx, models.CatalogFood, "Éclair")
		require.NoError(t, err)

		names, err := repo.MatchNames(ctx, models.CatalogFood, []string{"éclair", "crème"})
		require.NoError(t, err)
		assert.Equal(t, []string{"éclair"}, names)
	})

	t.Run("RandomNames", func(t *testing.T) {
		names, err := repo.RandomNames(ctx, models.CatalogPreparation, 5)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Deep-fried", "Frozen"}, names)

		names, err = repo.RandomNames(ctx, models.CatalogPreparation, 1)
		require.NoError(t, err)
		assert.Len(t, names, 1)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := repo.List(ctx, models.CatalogKind("drinks"))
		assert.True(t, models.IsCode(err, models.CodeInvalidArgument))
	})
}

func TestCatalogRepository_InsertIfAbsentSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "preparations" \("name"\) VALUES \(\$1\) ON CONFLICT \("name"\) DO NOTHING`).
		WithArgs("Microwaved").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	added, err := repo.InsertIfAbsent(context.Background(), models.CatalogPreparation, "Microwaved")
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSuggestionRepository(db)
	ctx := context.Background()

	first := &models.Suggestion{Item: "Ketchup", Status: models.SuggestionStatusPending, Date: "2024-05-01", Type: models.CatalogFood}
	second := &models.Suggestion{Item: "Boiled", Status: models.SuggestionStatusApproved, Date: "2024-05-02", Type: models.CatalogPreparation}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("List", func(t *testing.T) {
		all, err := repo.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, first.ID, all[0].ID)

		pending, err := repo.List(ctx, models.SuggestionStatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Ketchup", pending[0].Item)
	})

	t.Run("Update", func(t *testing.T) {
		first.Item = "Mustard"
		first.Status = models.SuggestionStatusRejected
		require.NoError(t, repo.Update(ctx, first))

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mustard", got.Item)
		assert.Equal(t, models.SuggestionStatusRejected, got.Status)
		assert.Equal(t, "2024-05-01", got.Date)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))
		_, err := repo.GetByID(ctx, second.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))

		err = repo.Delete(ctx, second.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("Update missing", func(t *testing.T) {
		err := repo.Update(ctx, &models.Suggestion{ID: 999, Item: "x", Status: models.SuggestionStatusPending})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}

func TestDailyImageRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewDailyImageRepository(db)
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	for _, d := range []string{"2024-05-01", "2024-05-03", "2024-05-02"} {
		created, err := repo.InsertIfAbsent(ctx, &models.DailyImage{
			GenerationDate:  d,
			FoodCombination: "Frozen Pizza",
			PublicURL:       "https://cdn.example.com/crime-" + d + ".png",
		})
		require.NoError(t, err)
		assert.True(t, created)
	}

	t.Run("InsertIfAbsent keeps the first row", func(t *testing.T) {
		created, err := repo.InsertIfAbsent(ctx, &models.DailyImage{
			GenerationDate:  "2024-05-01",
			FoodCombination: "Boiled Cake",
			PublicURL:       "https://cdn.example.com/other.png",
		})
		require.NoError(t, err)
		assert.False(t, created)

		got, err := repo.GetByDate(ctx, "2024-05-01")
		require.NoError(t, err)
		assert.Equal(t, "Frozen Pizza", got.FoodCombination)
	})

	t.Run("Latest", func(t *testing.T) {
		got, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-03", got.GenerationDate)
	})

	t.Run("List", func(t *testing.T) {
		list, err := repo.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "2024-05-03", list[0].GenerationDate)
		assert.Equal(t, "2024-05-02", list[1].GenerationDate)
	})

	t.Run("GetByDate missing", func(t *testing.T) {
		_, err := repo.GetByDate(ctx, "1999-01-01")
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}
