// Package service implements the moderation and daily image business logic.
package service

import (
	"context"
	"strings"

	"foodcrimes/internal/featureflags"
	"foodcrimes/internal/models"
	"foodcrimes/internal/observability"
	"foodcrimes/internal/repository"
)

// DuplicateService reports which words of a suggestion already exist in a catalog.
type DuplicateService struct {
	catalog repository.CatalogRepository
	flags   *featureflags.Manager
}

func NewDuplicateService(catalog repository.CatalogRepository, flags *featureflags.Manager) *DuplicateService {
	return &DuplicateService{catalog: catalog, flags: flags}
}

// Check lower-cases text, splits it on whitespace and returns one entry per
// (word, catalog) match. Words keep their first-appearance order and foods
// are reported before preparations. The result is never nil.
func (s *DuplicateService) Check(ctx context.Context, text string) ([]models.Duplicate, error) {
	out := make([]models.Duplicate, 0)
	if s.flags != nil && !s.flags.Enabled(featureflags.DuplicateCheck, "") {
		return out, nil
	}

	words := tokenize(text)
	if len(words) == 0 {
		return out, nil
	}

	found := make(map[models.CatalogKind]map[string]bool, len(models.CatalogKinds))
	for _, kind := range models.CatalogKinds {
		names, err := s.catalog.MatchNames(ctx, kind, words)
		if err != nil {
			return nil, err
		}
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n] = true
		}
		found[kind] = set
	}

	for _, w := range words {
		for _, kind := range models.CatalogKinds {
			if found[kind][w] {
				out = append(out, models.Duplicate{Word: w, List: kind.ListName()})
				observability.DuplicateMatches.WithLabelValues(kind.ListName()).Inc()
			}
		}
	}
	return out, nil
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	seen := make(map[string]struct{}, len(fields))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		words = append(words, f)
	}
	return words
}
