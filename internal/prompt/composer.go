// Package prompt builds the image prompt for the daily dish.
package prompt

import (
	"context"
	"fmt"
	"math/rand/v2"

	"foodcrimes/internal/models"
)

// InsufficientDataMessage is returned when either catalog has fewer than two entries.
const InsufficientDataMessage = "Not enough data in preparations or foods tables (requires at least 2 of each)."

// NameSource draws random catalog names.
type NameSource interface {
	RandomNames(ctx context.Context, kind models.CatalogKind, n int) ([]string, error)
}

// Rand picks an index in [0, n).
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Composition is a rendered prompt and the dish it depicts.
type Composition struct {
	Prompt    string
	DishTitle string
	Archetype string
}

// Composer turns two preparations and two foods into a scene prompt.
type Composer struct {
	names  NameSource
	scenes Scenes
	rnd    Rand
}

// NewComposer returns a Composer. A nil rnd uses math/rand/v2.
func NewComposer(names NameSource, scenes Scenes, rnd Rand) *Composer {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Composer{names: names, scenes: scenes, rnd: rnd}
}

// Compose draws the dish from the catalogs and renders a prompt for it.
func (c *Composer) Compose(ctx context.Context) (*Composition, error) {
	preps, err := c.names.RandomNames(ctx, models.CatalogPreparation, 2)
	if err != nil {
		return nil, err
	}
	foods, err := c.names.RandomNames(ctx, models.CatalogFood, 2)
	if err != nil {
		return nil, err
	}
	if len(preps) < 2 || len(foods) < 2 {
		return nil, models.NewInsufficientDataError(InsufficientDataMessage)
	}

	comp := c.Render(DishTitle(preps, foods))
	return &comp, nil
}

// DishTitle joins the first two preparations and foods into a title.
func DishTitle(preps, foods []string) string {
	return fmt.Sprintf("%s %s and %s %s", preps[0], foods[0], preps[1], foods[1])
}

// Render picks the scene fragments and assembles the prompt for dish.
func (c *Composer) Render(dish string) Composition {
	scene := c.scenes.Archetypes[c.rnd.IntN(len(c.scenes.Archetypes))]
	location := c.pick(scene.Locations)
	protagonist := c.pick(scene.ProtagonistActions)
	background := c.pick(scene.BackgroundActions)
	text := c.pick(scene.TextMethods)

	shot := c.pick(c.scenes.ShotTypes)
	lens := c.pick(c.scenes.Lenses)
	lighting := c.pick(c.scenes.LightingStyle)

	prompt := fmt.Sprintf(
		"%s of a gourmet dish of %s. The shot is captured on %s. "+
			"The setting is %s. The dish %s. In the background, %s. "+
			"The text '%s' is creatively integrated by being %s. "+
			"The scene is lit with %s, creating a dramatic and interesting image.",
		shot, dish, lens, location, protagonist, background, dish, text, lighting,
	)

	return Composition{Prompt: prompt, DishTitle: dish, Archetype: scene.Archetype}
}

func (c *Composer) pick(options []string) string {
	return options[c.rnd.IntN(len(options))]
}
