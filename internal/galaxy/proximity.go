package galaxy

// PointSet is a set of star positions.
type PointSet map[Point]struct{}

// NewPointSet builds a set from points.
func NewPointSet(points []Point) PointSet {
	s := make(PointSet, len(points))
	for _, p := range points {
		s[p] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s PointSet) Has(p Point) bool {
	_, ok := s[p]
	return ok
}

func (s PointSet) add(p Point) {
	s[p] = struct{}{}
}

// Proximity holds the stars next to potential home stars.
type Proximity struct {
	// OneJump are stars sharing a hyperlane with a home star.
	OneJump PointSet
	// TwoJumps are stars sharing a hyperlane with a OneJump star that are
	// neither home stars nor in OneJump themselves.
	TwoJumps PointSet
}

// ClassifyProximity finds the one and two jump frontiers around homes.
//
// This is a frontier test per edge, not a shortest path: an edge joining two
// OneJump stars contributes nothing, and an edge from OneJump back to a home
// star is ignored.
func ClassifyProximity(connections []Connection, homes PointSet) Proximity {
	oneJump := make(PointSet)
	for _, c := range connections {
		from, to := c[0], c[1]
		fromHome, toHome := homes.Has(from), homes.Has(to)
		switch {
		case fromHome && !toHome:
			oneJump.add(to)
		case toHome && !fromHome:
			oneJump.add(from)
		}
	}

	twoJumps := make(PointSet)
	for _, c := range connections {
		from, to := c[0], c[1]
		fromAdjacent, toAdjacent := oneJump.Has(from), oneJump.Has(to)
		switch {
		case fromAdjacent && !toAdjacent && !homes.Has(to):
			twoJumps.add(to)
		case toAdjacent && !fromAdjacent && !homes.Has(from):
			twoJumps.add(from)
		}
	}

	return Proximity{OneJump: oneJump, TwoJumps: twoJumps}
}
