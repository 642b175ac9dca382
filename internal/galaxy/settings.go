package galaxy

import "math"

// SizeTier is a block of size dependent game settings. Settings is copied
// into the scenario verbatim.
type SizeTier struct {
	Name     string `yaml:"name"`
	MinStars int    `yaml:"min_stars"`
	Settings string `yaml:"settings"`
}

// Settings controls generation. The text blocks are opaque to the generator.
type Settings struct {
	Bounds                  `yaml:",inline"`
	FallenEmpireSpawnRadius int        `yaml:"fallen_empire_spawn_radius"`
	SpawnsPerMaxAIEmpire    float64    `yaml:"spawns_per_max_ai_empire"`
	Common                  string     `yaml:"common"`
	Tiers                   []SizeTier `yaml:"size_tiers"`
}

// Canvas defaults match the painter's drawing surface.
const (
	DefaultWidth                   = 1000
	DefaultHeight                  = 1000
	DefaultFallenEmpireSpawnRadius = 30

	// Vanilla allows 6 empires per 200 stars, but players and some origins
	// add empires on top, so spawns are provisioned 50% above that.
	DefaultSpawnsPerMaxAIEmpire = 1.5
)

// DefaultSettings returns the stock canvas, common block and size tiers.
func DefaultSettings() Settings {
	return Settings{
		Bounds:                  Bounds{Width: DefaultWidth, Height: DefaultHeight},
		FallenEmpireSpawnRadius: DefaultFallenEmpireSpawnRadius,
		SpawnsPerMaxAIEmpire:    DefaultSpawnsPerMaxAIEmpire,
		Common:                  commonSettings,
		Tiers:                   DefaultTiers(),
	}
}

// DefaultTiers returns TINY through HUGE in ascending threshold order.
func DefaultTiers() []SizeTier {
	return []SizeTier{
		{Name: "tiny", MinStars: 0, Settings: tinySettings},
		{Name: "small", MinStars: 400, Settings: smallSettings},
		{Name: "medium", MinStars: 600, Settings: mediumSettings},
		{Name: "large", MinStars: 800, Settings: largeSettings},
		{Name: "huge", MinStars: 1000, Settings: hugeSettings},
	}
}

// Tier returns the last tier whose threshold starCount reaches, or the
// first tier if none does. Tiers must be in ascending order.
func (s Settings) Tier(starCount int) SizeTier {
	if len(s.Tiers) == 0 {
		return SizeTier{}
	}
	tier := s.Tiers[0]
	for _, t := range s.Tiers[1:] {
		if starCount >= t.MinStars {
			tier = t
		}
	}
	return tier
}

// AIEmpireLimits returns the num_empires max and default for a number of
// potential home stars. AI empires never take every spawn, so the max sits
// below the spawn count.
func (s Settings) AIEmpireLimits(homeStars int) (maxEmpires, defaultEmpires int) {
	perEmpire := float64(homeStars) / s.SpawnsPerMaxAIEmpire
	return round(perEmpire), round(perEmpire / 2)
}

// StartingStars recommends how many potential home stars to paint for a map
// with starCount stars.
func StartingStars(starCount int, spawnsPerMaxAIEmpire float64) int {
	return round(float64(starCount) / 200 * 6 * spawnsPerMaxAIEmpire)
}

// round halves up, so 2.5 is 3 and -2.5 is -2.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

const commonSettings = `
	priority = 10
	supports_shape = elliptical
	supports_shape = ring
	supports_shape = spiral_2
	supports_shape = spiral_3
	supports_shape = spiral_4
	supports_shape = spiral_6
	supports_shape = bar
	supports_shape = starburst
	supports_shape = cartwheel
	supports_shape = spoked
	random_hyperlanes = no

	num_wormhole_pairs = { min = 0 max = 5 }
	num_wormhole_pairs_default = 1
	num_gateways = { min = 0 max = 5 }
	num_gateways_default = 1
	num_hyperlanes = { min=0.5 max= 3 }
	num_hyperlanes_default = 1
	colonizable_planet_odds = 1.0
	primitive_odds = 1.0
`

const tinySettings = `
	fallen_empire_default = 0
	fallen_empire_max = 1
	marauder_empire_default = 1
	marauder_empire_max = 1
	advanced_empire_default = 0
	crisis_strength = 0.5
	extra_crisis_strength = { 10 25 }
`

const smallSettings = `
	fallen_empire_default = 1
	fallen_empire_max = 2
	marauder_empire_default = 1
	marauder_empire_max = 2
	advanced_empire_default = 1
	crisis_strength = 0.75
	extra_crisis_strength = { 10 25 }
`

const mediumSettings = `
	fallen_empire_default = 2
	fallen_empire_max = 3
	marauder_empire_default = 2
	marauder_empire_max = 2
	advanced_empire_default = 2
	crisis_strength = 1.0
	extra_crisis_strength = { 10 25 }
`

const largeSettings = `
	fallen_empire_default = 3
	fallen_empire_max = 4
	marauder_empire_default = 2
	marauder_empire_max = 3
	advanced_empire_default = 3
	crisis_strength = 1.25
	extra_crisis_strength = { 10 25 }
`

const hugeSettings = `
	fallen_empire_default = 4
	fallen_empire_max = 6
	marauder_empire_default = 3
	marauder_empire_max = 3
	advanced_empire_default = 4
	crisis_strength = 1.5
	extra_crisis_strength = { 10 25 }
`
