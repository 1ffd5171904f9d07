package cluster

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// Registered seeder names
const (
	SeederKPlusPlus  = "kplusplus"
	SeederBiggestGap = "biggest_gap"
)

// maxSeedAttempts bounds the rejection sampling of an unused k-means++ seed
const maxSeedAttempts = 1000

// Seeder chooses k distinct positions of values to use as initial centroids.
type Seeder interface {
	// Name returns the strategy name
	Name() string

	// Seed returns k seed positions. rng may be nil for deterministic strategies.
	Seed(values []float64, k int, rng *rand.Rand) ([]int, error)
}

// Registry holds available seeding strategies
var seederRegistry = make(map[string]Seeder)

// RegisterSeeder adds a seeder to the registry
func RegisterSeeder(name string, seeder Seeder) {
	seederRegistry[name] = seeder
}

// GetSeeder returns a seeder by name. Unknown names are ErrInvalidParameter.
func GetSeeder(name string) (Seeder, error) {
	if seeder, ok := seederRegistry[name]; ok {
		return seeder, nil
	}
	return nil, analytics.Errorf("seeder", analytics.ErrInvalidParameter,
		"unknown seeder %q, available: %v", name, ListSeeders())
}

// ListSeeders returns the registered seeder names in sorted order
func ListSeeders() []string {
	names := make([]string, 0, len(seederRegistry))
	for name := range seederRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterSeeder(SeederKPlusPlus, &KPlusPlusSeeder{})
	RegisterSeeder(SeederBiggestGap, &BiggestGapSeeder{})
}

// KPlusPlusSeeder picks the first seed uniformly at random and every further
// seed with probability proportional to its distance from the nearest seed
// already chosen.
//
// The cumulative weights are normalised by the sum of the raw values rather
// than by the sum of distances. When the walk never passes the drawn
// probability (negative or tiny sums) a uniform index is used instead.
type KPlusPlusSeeder struct{}

// Name returns the strategy name
func (s *KPlusPlusSeeder) Name() string {
	return SeederKPlusPlus
}

// Seed chooses k distinct seed positions
func (s *KPlusPlusSeeder) Seed(values []float64, k int, rng *rand.Rand) ([]int, error) {
	n := len(values)
	if err := validateK(SeederKPlusPlus, n, k); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, analytics.Errorf(SeederKPlusPlus, analytics.ErrInvalidParameter,
			"a random generator is required")
	}

	sum := floats.Sum(values)
	indices := make([]int, k)
	centroids := make([]float64, k)
	used := make([]bool, n)
	distances := make([]float64, n)

	indices[0] = rng.IntN(n)
	centroids[0] = values[indices[0]]
	used[indices[0]] = true

	for i := 1; i < k; i++ {
		for j, v := range values {
			d := math.MaxFloat64
			for _, c := range centroids[:i] {
				d = math.Min(d, math.Abs(v-c))
			}
			distances[j] = d
		}

		ind := probableIndex(sum, distances, rng)
		for attempt := 1; used[ind] && attempt < maxSeedAttempts; attempt++ {
			ind = probableIndex(sum, distances, rng)
		}
		if used[ind] {
			ind = firstUnused(used)
		}

		indices[i] = ind
		centroids[i] = values[ind]
		used[ind] = true
	}

	return indices, nil
}

// probableIndex walks the cumulative distance/sum weights until they pass a
// uniform draw, falling back to a uniform index.
func probableIndex(sum float64, distances []float64, rng *rand.Rand) int {
	cp := 0.0
	p := rng.Float64()
	for i, d := range distances {
		cp += d / sum
		if cp > p {
			return i
		}
	}
	return rng.IntN(len(distances))
}

func firstUnused(used []bool) int {
	for i, u := range used {
		if !u {
			return i
		}
	}
	return -1
}

// BiggestGapSeeder seeds deterministically at the left edge of the k-1
// largest adjacent gaps (in position order) plus the last element.
type BiggestGapSeeder struct{}

// Name returns the strategy name
func (s *BiggestGapSeeder) Name() string {
	return SeederBiggestGap
}

// Seed returns the k-1 biggest-gap positions sorted ascending followed by len(values)-1
func (s *BiggestGapSeeder) Seed(values []float64, k int, _ *rand.Rand) ([]int, error) {
	n := len(values)
	if err := validateK(SeederBiggestGap, n, k); err != nil {
		return nil, err
	}

	breaks, err := biggestBreaks(SeederBiggestGap, values, k-1)
	if err != nil {
		return nil, err
	}
	sort.Ints(breaks)

	return append(breaks, n-1), nil
}

// OutlierBandSeeds returns seed positions for outlier-band clustering: the
// midpoint first, then the low outlier boundary and the high outlier
// boundary when OutlierBounds finds them. The number of seeds is the
// cluster count (1 to 3).
func OutlierBandSeeds(values []float64, perc float64, sdevs float64) ([]int, error) {
	return outlierBandSeeds("outlier_band", values, perc, sdevs)
}

func outlierBandSeeds(op string, values []float64, perc float64, sdevs float64) ([]int, error) {
	if len(values) < 1 {
		return nil, analytics.Errorf(op, analytics.ErrInsufficientData, "empty sequence")
	}

	bounds, err := outlierBounds(op, values, perc, sdevs)
	if err != nil {
		return nil, err
	}

	seeds := make([]int, 0, 3)
	seeds = append(seeds, len(values)/2)
	if bounds.Low != NoBound {
		seeds = append(seeds, bounds.Low)
	}
	if bounds.High != NoBound {
		seeds = append(seeds, bounds.High)
	}
	return seeds, nil
}

func validateK(op string, n, k int) error {
	if n < 1 {
		return analytics.Errorf(op, analytics.ErrInsufficientData, "empty sequence")
	}
	if k < 1 {
		return analytics.Errorf(op, analytics.ErrInvalidParameter, "k must be >= 1, given: %d", k)
	}
	if k > n {
		return analytics.Errorf(op, analytics.ErrInvalidParameter,
			"sequence length %d less than k: %d", n, k)
	}
	return nil
}
