package galaxy

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownStar is returned when a connection or wormhole references a
	// position that is not in the star list.
	ErrUnknownStar = errors.New("unknown star")

	// ErrInvalidMap is returned by Map.Validate.
	ErrInvalidMap = errors.New("invalid map")
)

// Point is a star position on the painted canvas.
type Point struct {
	X int
	Y int
}

// String returns the position as "x,y".
func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Connection is an unordered pair of star positions. Hyperlanes and
// wormhole pairs share this shape.
type Connection [2]Point

// Has reports whether p is either endpoint.
func (c Connection) Has(p Point) bool {
	return c[0] == p || c[1] == p
}

// Nebula is a circle on the canvas.
type Nebula struct {
	X      float64
	Y      float64
	Radius float64
}

// Overlaps reports whether the two circles intersect (touching does not count).
func (n Nebula) Overlaps(o Nebula) bool {
	return math.Hypot(n.X-o.X, n.Y-o.Y) < n.Radius+o.Radius
}

// Direction is a cardinal direction a fallen empire spawn extends from its star.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the flag suffix for a Direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "n"
	case East:
		return "e"
	case South:
		return "s"
	case West:
		return "w"
	default:
		return "unknown"
	}
}

// AllDirections returns the four directions in placement order.
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// Offset moves p by distance along d. North is toward smaller y.
func (d Direction) Offset(p Point, distance int) Point {
	switch d {
	case North:
		return Point{p.X, p.Y - distance}
	case South:
		return Point{p.X, p.Y + distance}
	case East:
		return Point{p.X + distance, p.Y}
	case West:
		return Point{p.X - distance, p.Y}
	default:
		return p
	}
}

// Bounds is the size of the painted canvas.
type Bounds struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Contains reports whether p lies on the canvas, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= 0 && p.X <= b.Width && p.Y >= 0 && p.Y <= b.Height
}

// Map is everything the painter produces for one galaxy.
type Map struct {
	Name               string       `yaml:"name" json:"name"`
	Stars              []Point      `yaml:"stars" json:"stars"`
	Connections        []Connection `yaml:"connections,omitempty" json:"connections"`
	Wormholes          []Connection `yaml:"wormholes,omitempty" json:"wormholes"`
	PotentialHomeStars []Point      `yaml:"potential_home_stars,omitempty" json:"potentialHomeStars"`
	PreferredHomeStars []Point      `yaml:"preferred_home_stars,omitempty" json:"preferredHomeStars"`
	Nebulas            []Nebula     `yaml:"nebulas,omitempty" json:"nebulas"`
}

// Validate checks the preconditions generation relies on: every star is
// inside bounds and every connection and wormhole endpoint is a known star.
// Generate does not call it; callers that accept untrusted maps should.
func (m *Map) Validate(b Bounds) error {
	known := make(map[Point]bool, len(m.Stars))
	for _, s := range m.Stars {
		if !b.Contains(s) {
			return fmt.Errorf("%w: star %s outside %dx%d canvas", ErrInvalidMap, s, b.Width, b.Height)
		}
		known[s] = true
	}

	check := func(kind string, conns []Connection) error {
		for i, c := range conns {
			for _, p := range c {
				if !known[p] {
					return fmt.Errorf("%w: %s %d references %s: %w", ErrInvalidMap, kind, i, p, ErrUnknownStar)
				}
			}
		}
		return nil
	}
	if err := check("connection", m.Connections); err != nil {
		return err
	}
	if err := check("wormhole", m.Wormholes); err != nil {
		return err
	}

	for _, n := range m.Nebulas {
		if n.Radius < 0 {
			return fmt.Errorf("%w: nebula at %g,%g has negative radius", ErrInvalidMap, n.X, n.Y)
		}
	}
	return nil
}
