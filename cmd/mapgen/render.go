package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paintgalaxy/server/internal/galaxy"
)

// Unreachable returns stars with no hyperlane path from the first potential
// home star (or the first star when no homes are painted), in star order.
func Unreachable(m *galaxy.Map) []galaxy.Point {
	if len(m.Stars) == 0 {
		return nil
	}
	start := m.Stars[0]
	if len(m.PotentialHomeStars) > 0 {
		start = m.PotentialHomeStars[0]
	}

	adj := make(map[galaxy.Point][]galaxy.Point)
	for _, c := range append(append([]galaxy.Connection{}, m.Connections...), m.Wormholes...) {
		adj[c[0]] = append(adj[c[0]], c[1])
		adj[c[1]] = append(adj[c[1]], c[0])
	}

	visited := map[galaxy.Point]bool{start: true}
	queue := []galaxy.Point{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adj[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var out []galaxy.Point
	for _, s := range m.Stars {
		if !visited[s] {
			out = append(out, s)
		}
	}
	return out
}

// Render draws m on a cols x rows character grid.
func Render(m *galaxy.Map, bounds galaxy.Bounds, cols, rows int) string {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	cell := func(x, y float64) (int, int, bool) {
		c := int(x * float64(cols-1) / float64(bounds.Width))
		r := int(y * float64(rows-1) / float64(bounds.Height))
		return c, r, c >= 0 && c < cols && r >= 0 && r < rows
	}

	for _, n := range m.Nebulas {
		if c, r, ok := cell(n.X, n.Y); ok {
			grid[r][c] = '~'
		}
	}

	homes := galaxy.NewPointSet(m.PotentialHomeStars)
	preferred := galaxy.NewPointSet(m.PreferredHomeStars)
	for _, s := range m.Stars {
		c, r, ok := cell(float64(s.X), float64(s.Y))
		if !ok {
			continue
		}
		switch {
		case preferred.Has(s):
			grid[r][c] = 'P'
		case homes.Has(s):
			grid[r][c] = 'H'
		default:
			grid[r][c] = '*'
		}
	}

	var out strings.Builder
	border := "+" + strings.Repeat("-", cols) + "+\n"
	out.WriteString(border)
	for _, row := range grid {
		out.WriteString("|" + string(row) + "|\n")
	}
	out.WriteString(border)
	return out.String()
}

// Report renders the map with a connectivity check and legend.
func Report(m *galaxy.Map, bounds galaxy.Bounds, cols, rows int, legend bool) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Painted Map: %s (%d stars, %d hyperlanes, %d wormholes, %d nebulas)\n",
		m.Name, len(m.Stars), len(m.Connections), len(m.Wormholes), len(m.Nebulas)))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")

	if unreachable := Unreachable(m); len(unreachable) > 0 {
		sort.Slice(unreachable, func(i, j int) bool {
			if unreachable[i].Y != unreachable[j].Y {
				return unreachable[i].Y < unreachable[j].Y
			}
			return unreachable[i].X < unreachable[j].X
		})
		output.WriteString("WARNING: Unreachable stars detected!\n")
		for _, p := range unreachable {
			output.WriteString(fmt.Sprintf("  - %s\n", p))
		}
		output.WriteString("\n")
	} else {
		output.WriteString(fmt.Sprintf("All %d stars are connected.\n\n", len(m.Stars)))
	}

	output.WriteString(Render(m, bounds, cols, rows))

	if legend {
		output.WriteString(`
Legend:
  *  star
  H  potential home star
  P  preferred home star
  ~  nebula center
`)
	}
	return output.String()
}
