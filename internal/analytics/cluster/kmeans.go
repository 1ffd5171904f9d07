package cluster

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// Options configures a clustering run
type Options struct {
	// K is the number of clusters, 1 <= K <= len(values)
	K int

	// Seeds is the number of independent trials; the lowest score wins.
	// Values below 1 run a single trial.
	Seeds int

	// Updates bounds the recompute/reassign passes after the initial
	// assignment: a positive value allows up to Updates+1 passes, stopping
	// early when no centroid moves or no point changes cluster. 0 keeps the
	// initial assignment with centroids at the seed values.
	Updates int

	// Seeder chooses the initial centroids
	Seeder Seeder

	// Rand drives randomised seeders. Deterministic seeders accept nil.
	Rand *rand.Rand
}

// Assignment is the result of a clustering run: a cluster label per value.
type Assignment struct {
	Values    []float64
	Labels    []int
	Centroids []float64
	K         int
	Score     float64
}

// Run partitions values into opts.K clusters by Lloyd iteration in one
// dimension, repeated opts.Seeds times from fresh seeds, and returns the
// lowest-scoring assignment. Ties keep the earliest trial.
func Run(values []float64, opts Options) (*Assignment, error) {
	return run("cluster", values, opts)
}

func run(op string, values []float64, opts Options) (*Assignment, error) {
	n := len(values)
	if err := validateK(op, n, opts.K); err != nil {
		return nil, err
	}
	if opts.Updates < 0 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"updates must be >= 0, given: %d", opts.Updates)
	}
	if opts.Seeder == nil {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "a seeder is required")
	}

	if opts.K == 1 {
		return single(values), nil
	}

	trials := opts.Seeds
	if trials < 1 {
		trials = 1
	}

	var best *Assignment
	for t := 0; t < trials; t++ {
		seeds, err := opts.Seeder.Seed(values, opts.K, opts.Rand)
		if err != nil {
			return nil, err
		}
		a, err := fit(op, values, seeds, opts.Updates)
		if err != nil {
			return nil, err
		}
		if best == nil || a.Score < best.Score {
			best = a
		}
	}

	if err := best.check(op); err != nil {
		return nil, err
	}
	return best, nil
}

// single puts every value into cluster 0
func single(values []float64) *Assignment {
	return &Assignment{
		Values:    values,
		Labels:    make([]int, len(values)),
		Centroids: []float64{stat.Mean(values, nil)},
		K:         1,
		Score:     0,
	}
}

// fit runs one trial from the given seed positions
func fit(op string, values []float64, seeds []int, updates int) (*Assignment, error) {
	k := len(seeds)
	if k < 1 {
		return nil, analytics.Errorf(op, analytics.ErrInternalInvariant, "no seeds chosen")
	}

	centroids := make([]float64, k)
	for i, s := range seeds {
		if s < 0 || s >= len(values) {
			return nil, analytics.Errorf(op, analytics.ErrInternalInvariant,
				"seed position %d outside [0,%d)", s, len(values))
		}
		centroids[i] = values[s]
	}

	labels := make([]int, len(values))
	reassign(values, centroids, labels)

	for pass := 0; updates > 0 && pass <= updates; pass++ {
		if !recenter(values, centroids, labels) {
			break
		}
		if !reassign(values, centroids, labels) {
			break
		}
	}

	return &Assignment{
		Values:    values,
		Labels:    labels,
		Centroids: centroids,
		K:         k,
		Score:     Score(values, labels, k),
	}, nil
}

// reassign moves every value to its nearest centroid. Equal distances go to
// the lower cluster index. Reports whether any label changed.
func reassign(values, centroids []float64, labels []int) bool {
	changed := false
	for i, v := range values {
		nearest := 0
		dist := math.Abs(v - centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := math.Abs(v - centroids[c]); d < dist {
				nearest = c
				dist = d
			}
		}
		if labels[i] != nearest {
			labels[i] = nearest
			changed = true
		}
	}
	return changed
}

// recenter moves every non-empty cluster's centroid to its member mean. An
// empty cluster keeps its centroid. Reports whether any centroid moved.
func recenter(values, centroids []float64, labels []int) bool {
	sums := make([]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, v := range values {
		sums[labels[i]] += v
		counts[labels[i]]++
	}

	moved := false
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		mean := sums[c] / float64(counts[c])
		if mean != centroids[c] {
			centroids[c] = mean
			moved = true
		}
	}
	return moved
}

// Score sums, over every cluster, the squared distance of each member from
// the cluster anchor sum+sum/count. Lower is better. Empty clusters add 0.
func Score(values []float64, labels []int, k int) float64 {
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, v := range values {
		sums[labels[i]] += v
		counts[labels[i]]++
	}

	anchors := make([]float64, k)
	for c := range anchors {
		if counts[c] > 0 {
			anchors[c] = sums[c] + sums[c]/float64(counts[c])
		}
	}

	score := 0.0
	for i, v := range values {
		d := v - anchors[labels[i]]
		score += d * d
	}
	return score
}

// check verifies every label lies in [0,K)
func (a *Assignment) check(op string) error {
	if len(a.Labels) != len(a.Values) {
		return analytics.Errorf(op, analytics.ErrInternalInvariant,
			"%d labels for %d values", len(a.Labels), len(a.Values))
	}
	for i, l := range a.Labels {
		if l < 0 || l >= a.K {
			return analytics.Errorf(op, analytics.ErrInternalInvariant,
				"label %d at position %d outside [0,%d)", l, i, a.K)
		}
	}
	return nil
}
