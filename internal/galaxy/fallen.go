package galaxy

import "math"

// FallenEmpireSpawn reserves a disc next to a star for a fallen empire.
type FallenEmpireSpawn struct {
	Star      int // index into the star list
	Direction Direction
}

// Origin returns the center of the spawn disc.
func (fe FallenEmpireSpawn) Origin(stars []Point, radius int) Point {
	return fe.Direction.Offset(stars[fe.Star], radius)
}

// PlanFallenEmpires greedily places spawn discs of the given radius. Stars
// are visited in order and each tries north, east, south then west. A
// candidate is accepted when its center is at least radius inside every
// canvas edge, no star lies within radius of it, and no previously accepted
// center lies within 2*radius.
//
// The result depends on input order; it is not a maximum packing.
func PlanFallenEmpires(stars []Point, bounds Bounds, radius int) []FallenEmpireSpawn {
	var (
		spawns  []FallenEmpireSpawn
		origins []Point
	)
	for i, star := range stars {
		for _, dir := range AllDirections() {
			origin := dir.Offset(star, radius)
			if !canSpawnFallenEmpire(origin, stars, origins, bounds, radius) {
				continue
			}
			spawns = append(spawns, FallenEmpireSpawn{Star: i, Direction: dir})
			origins = append(origins, origin)
		}
	}
	return spawns
}

func canSpawnFallenEmpire(origin Point, stars, accepted []Point, bounds Bounds, radius int) bool {
	if origin.X < radius || origin.X > bounds.Width-radius ||
		origin.Y < radius || origin.Y > bounds.Height-radius {
		return false
	}

	r := float64(radius)
	for _, s := range stars {
		if distance(s, origin) < r {
			return false
		}
	}
	for _, o := range accepted {
		if distance(o, origin) < 2*r {
			return false
		}
	}
	return true
}

func distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// spawnsByStar indexes spawns by their anchor star, keeping direction order.
func spawnsByStar(spawns []FallenEmpireSpawn) map[int][]Direction {
	out := make(map[int][]Direction)
	for _, fe := range spawns {
		out[fe.Star] = append(out[fe.Star], fe.Direction)
	}
	return out
}
