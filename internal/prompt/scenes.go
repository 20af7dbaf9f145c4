package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene is one archetype and the fragments it can be dressed with.
type Scene struct {
	Archetype          string   `yaml:"archetype"`
	Locations          []string `yaml:"locations"`
	ProtagonistActions []string `yaml:"protagonist_actions"`
	BackgroundActions  []string `yaml:"background_actions"`
	TextMethods        []string `yaml:"text_methods"`
}

// Scenes is the full fragment library the composer draws from.
type Scenes struct {
	Archetypes    []Scene  `yaml:"archetypes"`
	ShotTypes     []string `yaml:"shot_types"`
	Lenses        []string `yaml:"lenses"`
	LightingStyle []string `yaml:"lighting_styles"`
}

// DefaultScenes returns the built-in fragment library.
func DefaultScenes() Scenes {
	return Scenes{
		Archetypes: []Scene{
			{
				Archetype: "Action Scene",
				Locations: []string{
					"a riot clashing with police",
					"a high-speed car chase on a coastal highway",
					"a bank heist with money flying everywhere",
					"a chaotic kitchen during a dinner rush fire",
					"the deck of a ship in a perfect storm",
				},
				ProtagonistActions: []string{
					"is held by a stoic riot police officer on a shield",
					"is precariously balanced on the dashboard, held by a getaway driver",
					"is being presented by a terrified bank manager",
					"is being rescued by a chef wearing a firefighter's helmet",
				},
				BackgroundActions: []string{
					"a protestor is trying to grab it while vaulting a barricade",
					"a pursuing helicopter is attempting to snag it with a net",
					"a fellow bank robber is making a desperate lunge for it",
					"a burst water pipe is spraying water everywhere around the scene",
				},
				TextMethods: []string{
					"graffitied on a wall in the background",
					"spelled out by the trail of smoke from a flare",
					"formed by scattered documents flying through the air",
					"written on the cracked screen of a dropped smartphone on the ground",
				},
			},
			{
				Archetype: "Abstract/Overhead",
				Locations: []string{
					"a bed of black volcanic sand",
					"a surface of cracked, parched earth",
					"a motherboard with glowing circuits",
					"a luxurious bed of crushed velvet",
					"an ancient, weathered stone altar",
				},
				ProtagonistActions: []string{
					"is meticulously arranged in a perfect geometric spiral",
					"is deconstructed, with its components laid out in a grid",
					"is presented as a single, perfect portion in the exact center",
					"is artfully splattered across the surface like a Jackson Pollock painting",
				},
				BackgroundActions: []string{
					"subtle wisps of colored smoke curl around the edges",
					"a single, perfect droplet of liquid is falling towards the dish",
					"the surface beneath is slowly cracking",
					"bioluminescent fungi are gently pulsing with light around the dish",
				},
				TextMethods: []string{
					"etched into the surface as if by ancient tools",
					"formed by the glowing pathways of the circuit board",
					"subtly woven into the texture of the velvet",
					"appears as a watermark, visible only from a certain angle",
				},
			},
			{
				Archetype: "Surreal/Impossible",
				Locations: []string{
					"an upside-down forest with glowing flora",
					"the interior of a giant, mechanical clock",
					"a library where the shelves are made of flowing waterfalls",
					"a serene asteroid field with a nebula in the background",
				},
				ProtagonistActions: []string{
					"is held by a gnome wearing a suit of armor made of leaves",
					"is being served by a clockwork automaton with too many arms",
					"is floating just above the hands of a librarian made of water",
					"is presented on a crystal platter by an ethereal space entity",
				},
				BackgroundActions: []string{
					"stars are being born in the distant nebula",
					"giant clock gears are slowly turning in the background",
					"books are swimming like fish through the water-shelves",
					"the roots of the upside-down trees are dripping starlight",
				},
				TextMethods: []string{
					"spelled out by constellations in the night sky",
					"formed by the hands of the giant clock",
					"written in the pages of a floating, open book",
					"appears as shimmering, magical runes on the crystal platter",
				},
			},
		},
		ShotTypes: []string{
			"Extreme Close-Up, focusing on a single textural detail",
			"Nadir Shot (straight down), creating a flat-lay effect",
			"Worm's-eye View (looking straight up), making the food tower over the viewer",
			"Point-of-View (POV) shot, as if the viewer is about to eat it",
			"Dutch Angle, creating a sense of unease or chaos",
		},
		Lenses: []string{
			"a macro lens",
			"a fisheye lens",
			"an 85mm cinematic lens",
			"an anamorphic lens with lens flare",
		},
		LightingStyle: []string{
			"harsh, direct sunlight creating hard shadows",
			"soft, diffused light as if on an overcast day",
			"dramatic, low-key noir lighting with a single light source",
			"eerie, colorful bioluminescent light from the environment",
			"warm, romantic light as if from a flickering fireplace",
		},
	}
}

// LoadScenes reads a YAML fragment library from path. Sections missing from
// the file keep their built-in values.
func LoadScenes(path string) (Scenes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenes{}, fmt.Errorf("read scenes file: %w", err)
	}

	var override Scenes
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Scenes{}, fmt.Errorf("parse scenes file: %w", err)
	}

	scenes := DefaultScenes()
	if len(override.Archetypes) > 0 {
		scenes.Archetypes = override.Archetypes
	}
	if len(override.ShotTypes) > 0 {
		scenes.ShotTypes = override.ShotTypes
	}
	if len(override.Lenses) > 0 {
		scenes.Lenses = override.Lenses
	}
	if len(override.LightingStyle) > 0 {
		scenes.LightingStyle = override.LightingStyle
	}

	if err := scenes.Validate(); err != nil {
		return Scenes{}, err
	}
	return scenes, nil
}

// Validate reports the first empty fragment list.
func (s Scenes) Validate() error {
	if len(s.Archetypes) == 0 {
		return fmt.Errorf("scenes: no archetypes")
	}
	for _, a := range s.Archetypes {
		switch {
		case a.Archetype == "":
			return fmt.Errorf("scenes: archetype without a name")
		case len(a.Locations) == 0, len(a.ProtagonistActions) == 0,
			len(a.BackgroundActions) == 0, len(a.TextMethods) == 0:
			return fmt.Errorf("scenes: archetype %q has an empty fragment list", a.Archetype)
		}
	}
	if len(s.ShotTypes) == 0 || len(s.Lenses) == 0 || len(s.LightingStyle) == 0 {
		return fmt.Errorf("scenes: camera directives must not be empty")
	}
	return nil
}
