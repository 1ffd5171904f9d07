package cluster

import (
	"math"
	"math/rand/v2"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// DefaultDynamicSeeds and DefaultDynamicUpdates apply when KDynamicParams
// leaves Seeds or Updates at zero. DefaultSDevs is the usual outlier band
// width; SDevs itself has no zero default and must be at least 1.
const (
	DefaultDynamicSeeds   = 300
	DefaultDynamicUpdates = 50
	DefaultSDevs          = 2.0
)

// RankLargest selects the largest cluster in KPlusPlus
const RankLargest = -1

// KPlusPlusParams configures KPlusPlus and KPlusPlusAll. The zero Rank
// selects the smallest cluster; set Rank to RankLargest for the largest.
type KPlusPlusParams struct {
	K       int
	Seeds   int
	Updates int

	// Rank selects a cluster by size: clusters are ordered by count, largest
	// first, and rank r picks position K-1-r. Rank K-1 (or RankLargest) is
	// the largest cluster and rank 0 the smallest. KPlusPlusAll ignores it.
	Rank int

	Rand *rand.Rand
}

// KNearParams configures KNear and KNearAvg
type KNearParams struct {
	K        int
	Seeds    int
	Updates  int
	Target   float64
	MinCount int
	Rand     *rand.Rand
}

// KDynamicParams configures KDynamic
type KDynamicParams struct {
	// Middle is the central fraction handed to the outlier detector
	Middle float64

	// SDevs is the outlier band width in standard deviations, >= 1.
	// Zero is rejected like any other value below 1.
	SDevs float64

	Seeds   int
	Updates int
	Rand    *rand.Rand
}

// DynamicResult is the largest cluster found by KDynamic and the cluster
// count it chose.
type DynamicResult struct {
	Stats Stats `json:"stats"`
	K     int   `json:"k"`
}

// KPlusPlus clusters values with k-means++ seeding and returns the cluster at
// the requested size rank.
func KPlusPlus(values []float64, p KPlusPlusParams) (Stats, error) {
	const op = "kplusplus"

	if err := validateK(op, len(values), p.K); err != nil {
		return Stats{}, err
	}
	rank := p.Rank
	if rank == RankLargest {
		rank = p.K - 1
	}
	if rank < 0 || rank >= p.K {
		return Stats{}, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"rank must be in [0,%d), given: %d", p.K, p.Rank)
	}

	a, err := kplusplus(op, values, p.K, p.Seeds, p.Updates, p.Rand)
	if err != nil {
		return Stats{}, err
	}

	return a.Stats(a.BySize()[p.K-1-rank]), nil
}

// KPlusPlusAll clusters values with k-means++ seeding and returns every
// cluster's statistics in index order. Rank is ignored.
func KPlusPlusAll(values []float64, p KPlusPlusParams) ([]Stats, error) {
	a, err := kplusplus("kplusplus_all", values, p.K, p.Seeds, p.Updates, p.Rand)
	if err != nil {
		return nil, err
	}
	return a.AllStats(), nil
}

// KSimple clusters values in a single pass from biggest-gap seeds and returns
// the largest cluster.
func KSimple(values []float64, k int) (Stats, error) {
	a, err := ksimple("ksimple", values, k)
	if err != nil {
		return Stats{}, err
	}
	return a.Stats(a.Largest()), nil
}

// KSimpleAll is KSimple returning every cluster's statistics in index order.
func KSimpleAll(values []float64, k int) ([]Stats, error) {
	a, err := ksimple("ksimple_all", values, k)
	if err != nil {
		return nil, err
	}
	return a.AllStats(), nil
}

// KNear clusters values with k-means++ seeding and returns the cluster whose
// mean is closest to Target among the clusters holding at least MinCount
// members. Equal distances go to the lower index.
func KNear(values []float64, p KNearParams) (Stats, error) {
	return knear("knear", values, p)
}

// KNearAvg returns the mean of the cluster chosen by KNear.
func KNearAvg(values []float64, p KNearParams) (float64, error) {
	s, err := knear("knear_avg", values, p)
	if err != nil {
		return 0, err
	}
	return s.Mean, nil
}

// KDynamic picks the cluster count from the outlier tails of values (one
// cluster plus one per tail), clusters with k-means++ seeding and returns
// the largest cluster together with the count used.
func KDynamic(values []float64, p KDynamicParams) (DynamicResult, error) {
	const op = "kdynamic"

	if math.IsNaN(p.Middle) || p.Middle < 0 || p.Middle > 1 {
		return DynamicResult{}, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"middle must be in [0,1], given: %g", p.Middle)
	}
	if len(values) < 1 {
		return DynamicResult{}, analytics.Errorf(op, analytics.ErrInsufficientData, "empty sequence")
	}

	seeds := p.Seeds
	if seeds < 1 {
		seeds = DefaultDynamicSeeds
	}
	updates := p.Updates
	if updates < 1 {
		updates = DefaultDynamicUpdates
	}

	bounds, err := outlierBounds(op, values, p.Middle, p.SDevs)
	if err != nil {
		return DynamicResult{}, err
	}
	k := 1 + bounds.Extra()
	if k > len(values) {
		k = len(values)
	}

	a, err := kplusplus(op, values, k, seeds, updates, p.Rand)
	if err != nil {
		return DynamicResult{}, err
	}
	return DynamicResult{Stats: a.Stats(a.Largest()), K: k}, nil
}

// KBand clusters values in a single pass seeded at the midpoint and at the
// outlier boundaries found by OutlierBounds, giving one to three clusters.
// sdevs must be at least 1; pass DefaultSDevs for the usual band.
func KBand(values []float64, perc float64, sdevs float64) (*Assignment, error) {
	const op = "kband"

	seeds, err := outlierBandSeeds(op, values, perc, sdevs)
	if err != nil {
		return nil, err
	}

	a, err := fit(op, values, seeds, 0)
	if err != nil {
		return nil, err
	}
	if err := a.check(op); err != nil {
		return nil, err
	}
	return a, nil
}

// KBig returns the positions of the num biggest adjacent gaps, largest first.
func KBig(values []float64, num int) ([]int, error) {
	return biggestBreaks("kbig", values, num)
}

func kplusplus(op string, values []float64, k, seeds, updates int, rng *rand.Rand) (*Assignment, error) {
	if rng == nil {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "a random generator is required")
	}
	if seeds < 1 {
		seeds = 1
	}
	if updates < 1 {
		updates = 1
	}

	return run(op, values, Options{
		K:       k,
		Seeds:   seeds,
		Updates: updates,
		Seeder:  &KPlusPlusSeeder{},
		Rand:    rng,
	})
}

func ksimple(op string, values []float64, k int) (*Assignment, error) {
	return run(op, values, Options{
		K:      k,
		Seeds:  1,
		Seeder: &BiggestGapSeeder{},
	})
}

func knear(op string, values []float64, p KNearParams) (Stats, error) {
	a, err := kplusplus(op, values, p.K, p.Seeds, p.Updates, p.Rand)
	if err != nil {
		return Stats{}, err
	}

	minCount := p.MinCount
	if minCount < 1 {
		minCount = 1
	}

	found := false
	var nearest Stats
	dist := math.Inf(1)
	for _, s := range a.AllStats() {
		if s.Count < minCount {
			continue
		}
		if d := math.Abs(s.Mean - p.Target); !found || d < dist {
			nearest = s
			dist = d
			found = true
		}
	}

	if !found {
		return Stats{}, analytics.Errorf(op, analytics.ErrInsufficientData,
			"no cluster holds at least %d points", minCount)
	}
	return nearest, nil
}
