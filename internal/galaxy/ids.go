package galaxy

import "fmt"

// IDs maps star positions to the integer ids written into the scenario.
type IDs map[Point]int

// MapIDs assigns each star its index in stars. Duplicate positions keep the
// last index; callers are expected to deduplicate.
func MapIDs(stars []Point) IDs {
	ids := make(IDs, len(stars))
	for i, s := range stars {
		ids[s] = i
	}
	return ids
}

// Lookup returns the id for p, or ErrUnknownStar.
func (ids IDs) Lookup(p Point) (int, error) {
	id, ok := ids[p]
	if !ok {
		return 0, fmt.Errorf("%w at %s", ErrUnknownStar, p)
	}
	return id, nil
}
