// Package adjacency scores how jumpy a sequence is by comparing each element
// with its predecessor, including the wraparound pair (last, first).
package adjacency

import (
	"math"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// RelativeDiff returns (l-r) divided by the smaller operand. A zero operand
// returns the other operand unchanged.
func RelativeDiff(l, r float64) float64 {
	if l == 0 {
		return r
	}
	if r == 0 {
		return l
	}
	if l < r {
		return (l - r) / l
	}
	return (l - r) / r
}

// Count returns how many adjacent pairs, the wraparound pair included, have
// an absolute relative difference above threshold. A single value scores 0.
func Count(values []float64, threshold float64) (int, error) {
	const op = "adjacency_count"

	if len(values) == 0 {
		return 0, analytics.Errorf(op, analytics.ErrInsufficientData, "empty sequence")
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return 0, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"relative difference threshold must be >= 0, given: %g", threshold)
	}
	if len(values) == 1 {
		return 0, nil
	}

	total := 0
	for _, rd := range diffs(values) {
		if math.Abs(rd) > threshold {
			total++
		}
	}
	return total, nil
}

// Diffs returns RelativeDiff(values[i], values[i-1]) at every i > 0 and the
// wraparound RelativeDiff(last, first) at index 0.
func Diffs(values []float64) ([]float64, error) {
	if len(values) < 2 {
		return nil, analytics.Errorf("adjacency_diffs", analytics.ErrInsufficientData,
			"at least 2 points are required, given: %d", len(values))
	}
	return diffs(values), nil
}

func diffs(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		out[i] = RelativeDiff(values[i], values[i-1])
	}
	out[0] = RelativeDiff(values[n-1], values[0])
	return out
}
