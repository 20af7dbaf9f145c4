package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodcrimes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand struct{ n int }

func (f fixedRand) IntN(n int) int {
	if f.n >= n {
		return n - 1
	}
	return f.n
}

type stubNames struct {
	names map[models.CatalogKind][]string
	err   error
}

func (s stubNames) RandomNames(_ context.Context, kind models.CatalogKind, n int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := s.names[kind]
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func TestComposer_Compose(t *testing.T) {
	t.Parallel()
	names := stubNames{names: map[models.CatalogKind][]string{
		models.CatalogPreparation: {"Deep-fried", "Frozen"},
		models.CatalogFood:        {"Pizza", "Sushi"},
	}}

	c := NewComposer(names, DefaultScenes(), fixedRand{n: 0})
	comp, err := c.Compose(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Deep-fried Pizza and Frozen Sushi", comp.DishTitle)
	assert.Equal(t, "Action Scene", comp.Archetype)
	assert.Equal(t,
		"Extreme Close-Up, focusing on a single textural detail of a gourmet dish of Deep-fried Pizza and Frozen Sushi. "+
			"The shot is captured on a macro lens. The setting is a riot clashing with police. "+
			"The dish is held by a stoic riot police officer on a shield. "+
			"In the background, a protestor is trying to grab it while vaulting a barricade. "+
			"The text 'Deep-fried Pizza and Frozen Sushi' is creatively integrated by being graffitied on a wall in the background. "+
			"The scene is lit with harsh, direct sunlight creating hard shadows, creating a dramatic and interesting image.",
		comp.Prompt)
}

func TestComposer_LastOptions(t *testing.T) {
	t.Parallel()
	c := NewComposer(nil, DefaultScenes(), fixedRand{n: 99})
	comp := c.Render("X")

	assert.Equal(t, "Surreal/Impossible", comp.Archetype)
	assert.True(t, strings.HasPrefix(comp.Prompt, "Dutch Angle, creating a sense of unease or chaos of a gourmet dish of X."))
	assert.Contains(t, comp.Prompt, "an anamorphic lens with lens flare")
	assert.Contains(t, comp.Prompt, "warm, romantic light as if from a flickering fireplace")
	assert.Contains(t, comp.Prompt, "appears as shimmering, magical runes on the crystal platter")
}

func TestComposer_InsufficientData(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		preps []string
		foods []string
	}{
		{"no preparations", nil, []string{"Pizza", "Sushi"}},
		{"one food", []string{"Fried", "Boiled"}, []string{"Pizza"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposer(stubNames{names: map[models.CatalogKind][]string{
				models.CatalogPreparation: tt.preps,
				models.CatalogFood:        tt.foods,
			}}, DefaultScenes(), nil)
			_, err := c.Compose(context.Background())
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeInsufficientData))
			assert.Equal(t, InsufficientDataMessage, err.Error())
		})
	}
}

func TestComposer_SourceError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	c := NewComposer(stubNames{err: boom}, DefaultScenes(), nil)
	_, err := c.Compose(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestComposer_RandomDrawsStayInRange(t *testing.T) {
	t.Parallel()
	c := NewComposer(nil, DefaultScenes(), nil)
	for i := 0; i < 200; i++ {
		comp := c.Render("Dish")
		assert.NotEmpty(t, comp.Archetype)
		assert.Contains(t, comp.Prompt, "The text 'Dish'")
	}
}

func TestLoadScenes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	t.Run("partial override keeps defaults", func(t *testing.T) {
		path := filepath.Join(dir, "scenes.yml")
		require.NoError(t, os.WriteFile(path, []byte("lenses:\n  - a pinhole camera\n"), 0o600))

		scenes, err := LoadScenes(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a pinhole camera"}, scenes.Lenses)
		assert.Len(t, scenes.Archetypes, 3)
		assert.Len(t, scenes.ShotTypes, 5)
	})

	t.Run("empty fragment list is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yml")
		body := "archetypes:\n  - archetype: Quiet\n    locations: [a library]\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		_, err := LoadScenes(path)
		assert.ErrorContains(t, err, `"Quiet"`)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScenes(filepath.Join(dir, "nope.yml"))
		assert.Error(t, err)
	})
}
