// Package analytics provides the shared types, error taxonomy and input
// conversion used by the clustering and adjacency packages.
package analytics

import (
	"sort"
	"time"
)

// TimeSeriesPoint represents a single time-series data point with time and value.
// This is the common type accepted by the clustering entry points when the
// caller supplies timestamped readings instead of a bare sequence.
type TimeSeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TimeSeriesData represents a collection of time-series data points
type TimeSeriesData []TimeSeriesPoint

// Values extracts just the values from the time series
func (ts TimeSeriesData) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// SortByTime orders the points by ascending time in place. Points sharing a
// timestamp keep their relative order.
func (ts TimeSeriesData) SortByTime() {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Time.Before(ts[j].Time)
	})
}

// Sequence returns the values ordered by time without modifying ts.
func (ts TimeSeriesData) Sequence() []float64 {
	sorted := make(TimeSeriesData, len(ts))
	copy(sorted, ts)
	sorted.SortByTime()
	return sorted.Values()
}
