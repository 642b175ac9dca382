package galaxy

import "sort"

// GroupNebulas partitions nebulas into groups of transitively overlapping
// circles. Each group is sorted by radius, largest first; the scenario only
// names the first member so a merged region gets a single label.
//
// Groups are rebuilt when a nebula bridges several of them. That is
// quadratic, which is fine for the tens of nebulas a painted map holds.
func GroupNebulas(nebulas []Nebula) [][]Nebula {
	var groups [][]Nebula
	for _, n := range nebulas {
		var overlapping []int
		for gi, group := range groups {
			for _, member := range group {
				if member.Overlaps(n) {
					overlapping = append(overlapping, gi)
					break
				}
			}
		}

		switch len(overlapping) {
		case 0:
			groups = append(groups, []Nebula{n})
		case 1:
			groups[overlapping[0]] = append(groups[overlapping[0]], n)
		default:
			var merged []Nebula
			keep := groups[:0:0]
			next := 0
			for gi, group := range groups {
				if next < len(overlapping) && overlapping[next] == gi {
					merged = append(merged, group...)
					next++
					continue
				}
				keep = append(keep, group)
			}
			groups = append(keep, append(merged, n))
		}
	}

	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Radius > group[j].Radius
		})
	}
	return groups
}
