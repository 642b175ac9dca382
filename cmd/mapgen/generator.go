package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/paintgalaxy/server/internal/galaxy"
)

// MapGenerator paints random galaxies, for trying the scenario generator
// without the browser painter.
type MapGenerator struct {
	rng        *rand.Rand
	bounds     galaxy.Bounds
	minSpacing float64
}

// NewMapGenerator creates a generator for the given canvas.
func NewMapGenerator(seed int64, bounds galaxy.Bounds) *MapGenerator {
	return &MapGenerator{
		rng:        rand.New(rand.NewSource(seed)),
		bounds:     bounds,
		minSpacing: 12,
	}
}

// Generate scatters stars, links each to its nearest neighbours, and marks
// every homeEvery-th star as a potential home star.
func (g *MapGenerator) Generate(name string, stars, homeEvery, nebulas int) (*galaxy.Map, error) {
	if stars <= 0 {
		return nil, fmt.Errorf("star count must be positive, got %d", stars)
	}

	m := &galaxy.Map{Name: name}
	seen := make(map[galaxy.Point]bool, stars)
	for attempts := 0; len(m.Stars) < stars; attempts++ {
		if attempts > stars*100 {
			return nil, fmt.Errorf("canvas %dx%d too crowded for %d stars", g.bounds.Width, g.bounds.Height, stars)
		}
		p := galaxy.Point{X: g.rng.Intn(g.bounds.Width + 1), Y: g.rng.Intn(g.bounds.Height + 1)}
		if seen[p] || g.tooClose(p, m.Stars) {
			continue
		}
		seen[p] = true
		m.Stars = append(m.Stars, p)
	}

	m.Connections = g.connect(m.Stars, 2)

	if homeEvery > 0 {
		for i := 0; i < len(m.Stars); i += homeEvery {
			m.PotentialHomeStars = append(m.PotentialHomeStars, m.Stars[i])
		}
		if len(m.PotentialHomeStars) > 0 {
			m.PreferredHomeStars = []galaxy.Point{m.PotentialHomeStars[0]}
		}
	}

	if len(m.Stars) > 3 {
		a := m.Stars[g.rng.Intn(len(m.Stars))]
		b := m.Stars[g.rng.Intn(len(m.Stars))]
		if a != b {
			m.Wormholes = []galaxy.Connection{{a, b}}
		}
	}

	for i := 0; i < nebulas; i++ {
		m.Nebulas = append(m.Nebulas, galaxy.Nebula{
			X:      float64(g.rng.Intn(g.bounds.Width + 1)),
			Y:      float64(g.rng.Intn(g.bounds.Height + 1)),
			Radius: float64(10 + g.rng.Intn(40)),
		})
	}
	return m, nil
}

func (g *MapGenerator) tooClose(p galaxy.Point, stars []galaxy.Point) bool {
	for _, s := range stars {
		if math.Hypot(float64(p.X-s.X), float64(p.Y-s.Y)) < g.minSpacing {
			return true
		}
	}
	return false
}

// connect links every star to its k nearest neighbours, without duplicate lanes.
func (g *MapGenerator) connect(stars []galaxy.Point, k int) []galaxy.Connection {
	type lane struct{ a, b int }
	seen := make(map[lane]bool)
	var out []galaxy.Connection

	for i, s := range stars {
		order := make([]int, 0, len(stars)-1)
		for j := range stars {
			if j != i {
				order = append(order, j)
			}
		}
		sort.Slice(order, func(x, y int) bool {
			return dist2(s, stars[order[x]]) < dist2(s, stars[order[y]])
		})

		for _, j := range order[:min(k, len(order))] {
			key := lane{min(i, j), max(i, j)}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, galaxy.Connection{stars[key.a], stars[key.b]})
		}
	}
	return out
}

func dist2(a, b galaxy.Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
