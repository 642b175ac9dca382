package galaxy

import (
	"fmt"
	"strconv"
	"strings"
)

// Analysis is the structural pass over a map that the scenario text is
// rendered from. It involves no randomness.
type Analysis struct {
	IDs           IDs
	Homes         PointSet
	Preferred     map[Point]int // rank among preferred home stars
	Proximity     Proximity
	FallenEmpires []FallenEmpireSpawn
	NebulaGroups  [][]Nebula
	Tier          SizeTier
	MaxAIEmpires  int
	AIEmpires     int

	// BasicChance is the probability that a two jump star gets a basic
	// initializer. It shrinks as more of the map sits near home stars.
	BasicChance float64
}

// Summary is a compact, serializable view of an Analysis.
type Summary struct {
	Stars          int    `json:"stars"`
	Hyperlanes     int    `json:"hyperlanes"`
	Wormholes      int    `json:"wormholes"`
	HomeStars      int    `json:"home_stars"`
	PreferredStars int    `json:"preferred_stars"`
	OneJump        int    `json:"one_jump"`
	TwoJumps       int    `json:"two_jumps"`
	FallenEmpires  int    `json:"fallen_empire_spawns"`
	Nebulas        int    `json:"nebulas"`
	NebulaGroups   int    `json:"nebula_groups"`
	SizeTier       string `json:"size_tier"`
	MaxAIEmpires   int    `json:"max_ai_empires"`
	StartingStars  int    `json:"recommended_starting_stars"`
}

// Generator turns painted maps into static galaxy scenarios.
type Generator struct {
	settings Settings
	rng      Rand
}

// NewGenerator creates a generator. rng drives initializer sampling; pass a
// seeded *rand.Rand for reproducible output.
func NewGenerator(settings Settings, rng Rand) *Generator {
	return &Generator{settings: settings, rng: rng}
}

// Settings returns the generator's settings.
func (g *Generator) Settings() Settings {
	return g.settings
}

// Analyze runs the structural pass: ids, proximity to home stars, fallen
// empire placement, nebula grouping and size tier.
func (g *Generator) Analyze(m *Map) *Analysis {
	homes := NewPointSet(m.PotentialHomeStars)
	preferred := make(map[Point]int, len(m.PreferredHomeStars))
	for i, p := range m.PreferredHomeStars {
		if _, seen := preferred[p]; !seen {
			preferred[p] = i
		}
	}

	a := &Analysis{
		IDs:           MapIDs(m.Stars),
		Homes:         homes,
		Preferred:     preferred,
		Proximity:     ClassifyProximity(m.Connections, homes),
		FallenEmpires: PlanFallenEmpires(m.Stars, g.settings.Bounds, g.settings.FallenEmpireSpawnRadius),
		NebulaGroups:  GroupNebulas(m.Nebulas),
		Tier:          g.settings.Tier(len(m.Stars)),
	}
	a.MaxAIEmpires, a.AIEmpires = g.settings.AIEmpireLimits(len(m.PotentialHomeStars))

	if len(m.Stars) > 0 {
		near := len(m.PotentialHomeStars) + len(a.Proximity.OneJump) + len(a.Proximity.TwoJumps)
		a.BasicChance = 1 - float64(near)/float64(len(m.Stars))
	}
	return a
}

// Summary condenses the analysis of m.
func (g *Generator) Summary(m *Map, a *Analysis) Summary {
	return Summary{
		Stars:          len(m.Stars),
		Hyperlanes:     len(m.Connections),
		Wormholes:      len(m.Wormholes),
		HomeStars:      len(m.PotentialHomeStars),
		PreferredStars: len(m.PreferredHomeStars),
		OneJump:        len(a.Proximity.OneJump),
		TwoJumps:       len(a.Proximity.TwoJumps),
		FallenEmpires:  len(a.FallenEmpires),
		Nebulas:        len(m.Nebulas),
		NebulaGroups:   len(a.NebulaGroups),
		SizeTier:       a.Tier.Name,
		MaxAIEmpires:   a.MaxAIEmpires,
		StartingStars:  StartingStars(len(m.Stars), g.settings.SpawnsPerMaxAIEmpire),
	}
}

// Generate renders m as a static_galaxy_scenario block.
func (g *Generator) Generate(m *Map) (string, error) {
	return g.Render(m, g.Analyze(m))
}

// Render writes the scenario for m using a previously computed analysis.
// It fails only when a hyperlane references a position missing from the
// star list.
func (g *Generator) Render(m *Map, a *Analysis) (string, error) {
	hyperlanes, err := g.hyperlaneEntries(m, a)
	if err != nil {
		return "", err
	}

	parts := []string{
		"static_galaxy_scenario = {",
		fmt.Sprintf("\tname=\"%s\"", sanitizeName(m.Name)),
		g.settings.Common,
		aiEmpireSettings(a),
		a.Tier.Settings,
		g.systemEntries(m, a),
		hyperlanes,
		g.nebulaEntries(a),
		"}",
	}
	return strings.Join(parts, "\n\n"), nil
}

func aiEmpireSettings(a *Analysis) string {
	return fmt.Sprintf("\n \tnum_empires = { min = 0 max = %d }\t#limits player customization; AI empires don't account for all spawns, so we need to set the max lower than the number of spawn points\n\tnum_empire_default = %d\n\t",
		a.MaxAIEmpires, a.AIEmpires)
}

func (g *Generator) systemEntries(m *Map, a *Analysis) string {
	feByStar := spawnsByStar(a.FallenEmpires)

	lines := make([]string, 0, len(m.Stars))
	for i, star := range m.Stars {
		basics := fmt.Sprintf("id = \"%d\" position = { x = %s y = %s }",
			a.IDs[star], g.formatX(float64(star.X)), g.formatY(float64(star.Y)))

		initializer, spawnWeight := g.initializer(i, star, m, a)

		var feEffect string
		if dirs := feByStar[i]; len(dirs) > 0 {
			flags := make([]string, 0, len(dirs)+1)
			flags = append(flags, "set_star_flag = painted_galaxy_fe_spawn")
			for _, d := range dirs {
				flags = append(flags, "set_star_flag = painted_galaxy_fe_spawn_"+d.String())
			}
			feEffect = strings.Join(flags, " ")
		}

		var wormholeEffect string
		for k, wh := range m.Wormholes {
			if wh.Has(star) {
				wormholeEffect = fmt.Sprintf("set_star_flag = painted_galaxy_wormhole_%d", k)
				break
			}
		}

		var effect string
		if feEffect != "" || wormholeEffect != "" {
			effect = fmt.Sprintf("effect = { %s %s }", feEffect, wormholeEffect)
		}

		lines = append(lines, fmt.Sprintf("\tsystem = { %s %s %s %s }", basics, initializer, spawnWeight, effect))
	}
	return strings.Join(lines, "\n")
}

// initializer picks the initializer and spawn weight for the star at index
// i. Home stars get an empire initializer, stars next to them a basic one,
// and stars two jumps out a basic one with probability BasicChance.
func (g *Generator) initializer(i int, star Point, m *Map, a *Analysis) (initializer, spawnWeight string) {
	switch {
	case a.Homes.Has(star):
		var params string
		if rank, ok := a.Preferred[star]; ok {
			params = fmt.Sprintf("|PREFERRED|yes|RANDOM_MODULO|%d|RANDOM_VALUE|%d|", len(m.PreferredHomeStars), rank)
		} else {
			params = fmt.Sprintf("|RANDOM_MODULO|10|RANDOM_VALUE|%d|", i%10)
		}
		return "initializer = " + empireInitializer(i),
			"spawn_weight = { base = 0 add = value:painted_galaxy_spawn_weight" + params + " }"
	case a.Proximity.OneJump.Has(star):
		return "initializer = " + BasicInitializers.Sample(g.rng), ""
	case a.Proximity.TwoJumps.Has(star):
		if g.rng.Float64() < a.BasicChance {
			return "initializer = " + BasicInitializers.Sample(g.rng), ""
		}
	}
	return "", ""
}

func (g *Generator) hyperlaneEntries(m *Map, a *Analysis) (string, error) {
	lines := make([]string, 0, len(m.Connections))
	for _, c := range m.Connections {
		from, err := a.IDs.Lookup(c[0])
		if err != nil {
			return "", fmt.Errorf("hyperlane %s-%s: %w", c[0], c[1], err)
		}
		to, err := a.IDs.Lookup(c[1])
		if err != nil {
			return "", fmt.Errorf("hyperlane %s-%s: %w", c[0], c[1], err)
		}
		lines = append(lines, fmt.Sprintf("\tadd_hyperlane = { from = \"%d\" to = \"%d\" }", from, to))
	}
	return strings.Join(lines, "\n"), nil
}

func (g *Generator) nebulaEntries(a *Analysis) string {
	var lines []string
	for _, group := range a.NebulaGroups {
		for i, n := range group {
			var name string
			if i != 0 {
				name = `name = " "`
			}
			lines = append(lines, fmt.Sprintf("\tnebula = { %s position = { x = %s y = %s } radius = %s }",
				name, g.formatX(n.X), g.formatY(n.Y), formatNumber(n.Radius)))
		}
	}
	return strings.Join(lines, "\n")
}

// The canvas has y pointing down with the origin in a corner; the game
// centers the galaxy and mirrors x.
func (g *Generator) formatX(x float64) string {
	return formatNumber(-(x - float64(g.settings.Width)/2))
}

func (g *Generator) formatY(y float64) string {
	return formatNumber(y - float64(g.settings.Height)/2)
}

func formatNumber(v float64) string {
	if v == 0 {
		return "0" // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sanitizeName keeps the scenario name from closing its quoted string early.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, `"`, "'")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(name)
}
