package seed

import (
	"context"
	"fmt"
	"time"

	"foodcrimes/internal/models"
	"foodcrimes/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

var demoPreparations = []string{
	"Deep-fried", "Microwaved", "Blended", "Frozen", "Boiled", "Caramelized",
	"Pickled", "Smoked", "Fermented", "Flambéed", "Dehydrated", "Candied",
}

// DemoSuggestions queues n random pending suggestions for local development.
func DemoSuggestions(ctx context.Context, repo repository.SuggestionRepository, n int) ([]models.Suggestion, error) {
	gofakeit.Seed(time.Now().UnixNano())

	out := make([]models.Suggestion, 0, n)
	for i := 0; i < n; i++ {
		sug := newDemoSuggestion()
		if err := repo.Create(ctx, &sug); err != nil {
			return out, fmt.Errorf("create demo suggestion: %w", err)
		}
		out = append(out, sug)
	}
	return out, nil
}

func newDemoSuggestion() models.Suggestion {
	sug := models.Suggestion{
		Status: models.SuggestionStatusPending,
		Date:   gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).Format(models.DateLayout),
		Type:   models.CatalogFood,
	}
	switch gofakeit.Number(0, 2) {
	case 0:
		sug.Item = gofakeit.Fruit()
	case 1:
		sug.Item = gofakeit.Dessert()
	default:
		sug.Item = gofakeit.RandomString(demoPreparations)
		sug.Type = models.CatalogPreparation
	}
	return sug
}
