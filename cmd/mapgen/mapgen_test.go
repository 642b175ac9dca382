package main

import (
	"strings"
	"testing"

	"github.com/paintgalaxy/server/internal/galaxy"
)

func TestGenerate(t *testing.T) {
	bounds := galaxy.Bounds{Width: 1000, Height: 1000}
	m, err := NewMapGenerator(42, bounds).Generate("Test", 60, 10, 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(m.Stars) != 60 {
		t.Errorf("expected 60 stars, got %d", len(m.Stars))
	}
	if len(m.PotentialHomeStars) != 6 {
		t.Errorf("expected 6 home stars, got %d", len(m.PotentialHomeStars))
	}
	if len(m.Nebulas) != 3 {
		t.Errorf("expected 3 nebulas, got %d", len(m.Nebulas))
	}
	if err := m.Validate(bounds); err != nil {
		t.Errorf("generated map should validate: %v", err)
	}

	// Every star gets at least its nearest neighbour.
	linked := make(map[galaxy.Point]bool)
	for _, c := range m.Connections {
		linked[c[0]], linked[c[1]] = true, true
		if c[0] == c[1] {
			t.Errorf("self loop at %s", c[0])
		}
	}
	for _, s := range m.Stars {
		if !linked[s] {
			t.Errorf("star %s has no hyperlane", s)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	bounds := galaxy.Bounds{Width: 500, Height: 500}
	a, _ := NewMapGenerator(7, bounds).Generate("A", 30, 5, 2)
	b, _ := NewMapGenerator(7, bounds).Generate("A", 30, 5, 2)

	for i := range a.Stars {
		if a.Stars[i] != b.Stars[i] {
			t.Fatalf("star %d differs: %s vs %s", i, a.Stars[i], b.Stars[i])
		}
	}
	if len(a.Connections) != len(b.Connections) {
		t.Error("connections differ for the same seed")
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := NewMapGenerator(1, galaxy.Bounds{Width: 100, Height: 100}).Generate("x", 0, 1, 0); err == nil {
		t.Error("expected error for zero stars")
	}
	if _, err := NewMapGenerator(1, galaxy.Bounds{Width: 10, Height: 10}).Generate("x", 50, 1, 0); err == nil {
		t.Error("expected error for an overcrowded canvas")
	}
}

func TestUnreachable(t *testing.T) {
	m := &galaxy.Map{
		Stars:              []galaxy.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 50, Y: 50}, {X: 60, Y: 60}},
		Connections:        []galaxy.Connection{{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		Wormholes:          []galaxy.Connection{{{X: 10, Y: 0}, {X: 20, Y: 0}}},
		PotentialHomeStars: []galaxy.Point{{X: 10, Y: 0}},
	}

	got := Unreachable(m)
	if len(got) != 2 || got[0] != (galaxy.Point{X: 50, Y: 50}) || got[1] != (galaxy.Point{X: 60, Y: 60}) {
		t.Errorf("Unreachable() = %v", got)
	}

	if got := Unreachable(&galaxy.Map{}); got != nil {
		t.Errorf("empty map should have no unreachable stars, got %v", got)
	}
}

func TestRender(t *testing.T) {
	m := &galaxy.Map{
		Stars:              []galaxy.Point{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 50, Y: 0}},
		PotentialHomeStars: []galaxy.Point{{X: 100, Y: 100}, {X: 50, Y: 0}},
		PreferredHomeStars: []galaxy.Point{{X: 50, Y: 0}},
		Nebulas:            []galaxy.Nebula{{X: 0, Y: 100, Radius: 5}},
	}
	out := Render(m, galaxy.Bounds{Width: 100, Height: 100}, 11, 3)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	want := []string{
		"+-----------+",
		"|*    P     |",
		"|           |",
		"|~         H|",
		"+-----------+",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestReport(t *testing.T) {
	m := &galaxy.Map{
		Name:        "Pair",
		Stars:       []galaxy.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Connections: []galaxy.Connection{{{X: 0, Y: 0}, {X: 10, Y: 0}}},
	}
	out := Report(m, galaxy.Bounds{Width: 100, Height: 100}, 20, 5, true)
	for _, want := range []string{"Painted Map: Pair (2 stars", "All 2 stars are connected.", "Legend:"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	m.Connections = nil
	if out := Report(m, galaxy.Bounds{Width: 100, Height: 100}, 20, 5, false); !strings.Contains(out, "WARNING: Unreachable stars detected!\n  - 10,0") {
		t.Errorf("expected unreachable warning:\n%s", out)
	}
}
