package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCatalogKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want CatalogKind
		ok   bool
	}{
		{"food", CatalogFood, true},
		{"Foods", CatalogFood, true},
		{" preparation ", CatalogPreparation, true},
		{"preparations", CatalogPreparation, true},
		{"drinks", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseCatalogKind(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogKindTable(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "foods", CatalogFood.Table())
	assert.Equal(t, "preparations", CatalogPreparation.Table())
	assert.Empty(t, CatalogKind("users").Table())
}

func TestParseSuggestionStatus(t *testing.T) {
	t.Parallel()
	s, ok := ParseSuggestionStatus("Approved")
	assert.True(t, ok)
	assert.Equal(t, SuggestionStatusApproved, s)

	_, ok = ParseSuggestionStatus("declined")
	assert.False(t, ok)
}
