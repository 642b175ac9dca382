package galaxy

import "fmt"

// Rand is the randomness the generator needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// WeightedInitializer is one entry of a weighted initializer table.
type WeightedInitializer struct {
	Name   string
	Weight int
}

// InitializerTable draws initializer names with probability weight/total.
type InitializerTable []WeightedInitializer

// BasicInitializers are the plain system initializers handed to systems
// near home stars, mimicking the engine's "empire_cluster" treatment.
var BasicInitializers = InitializerTable{
	{"basic_init_01", 20},
	{"basic_init_02", 20},
	{"basic_init_03", 10},
	{"basic_init_04", 10},
	{"basic_init_05", 6},
	{"basic_init_06", 4},
	{"asteroid_init_01", 2},
	{"binary_init_01", 6},
	{"binary_init_02", 4},
	{"trinary_init_01", 3},
	{"trinary_init_02", 3},
}

// Total returns the sum of weights.
func (t InitializerTable) Total() int {
	total := 0
	for _, w := range t {
		total += w.Weight
	}
	return total
}

// Sample picks one name. Drawing index k from [0, total) and walking the
// cumulative weights is the same as indexing a list where each name is
// repeated weight times.
func (t InitializerTable) Sample(rng Rand) string {
	k := rng.Intn(t.Total())
	for _, w := range t {
		if k < w.Weight {
			return w.Name
		}
		k -= w.Weight
	}
	// unreachable unless rng.Intn misbehaves
	return t[len(t)-1].Name
}

// empireInitializer cycles through the six random empire initializers.
func empireInitializer(index int) string {
	return fmt.Sprintf("random_empire_init_0%d", index%6+1)
}
