package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises one cluster. An empty cluster reports zero for every field
// except Index.
type Stats struct {
	Index  int     `json:"index"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// ComputeStats summarises the members of cluster idx. StdDev is the
// population standard deviation.
func ComputeStats(values []float64, labels []int, idx int) Stats {
	members := make([]float64, 0, len(values))
	for i, l := range labels {
		if l == idx {
			members = append(members, values[i])
		}
	}

	s := Stats{Index: idx}
	if len(members) == 0 {
		return s
	}

	s.Count = len(members)
	s.Min = floats.Min(members)
	s.Max = floats.Max(members)
	s.Mean, s.StdDev = popMeanStdDev(members)
	return s
}

// popMeanStdDev clamps the rounding error that can make the variance of
// near-constant data slightly negative.
func popMeanStdDev(x []float64) (float64, float64) {
	mean, variance := stat.PopMeanVariance(x, nil)
	if variance <= 0 {
		return mean, 0
	}
	return mean, math.Sqrt(variance)
}

// Stats summarises cluster idx
func (a *Assignment) Stats(idx int) Stats {
	return ComputeStats(a.Values, a.Labels, idx)
}

// AllStats summarises every cluster in index order
func (a *Assignment) AllStats() []Stats {
	all := make([]Stats, a.K)
	for i := range all {
		all[i] = a.Stats(i)
	}
	return all
}

// Counts returns the member count of every cluster
func (a *Assignment) Counts() []int {
	counts := make([]int, a.K)
	for _, l := range a.Labels {
		counts[l]++
	}
	return counts
}

// Largest returns the index of the cluster with the most members. Equal counts
// go to the lower index.
func (a *Assignment) Largest() int {
	counts := a.Counts()
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

// BySize returns cluster indices ordered by member count, largest first.
// Equal counts keep index order.
func (a *Assignment) BySize() []int {
	counts := a.Counts()
	order := make([]int, a.K)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}
