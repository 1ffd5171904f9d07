package cluster

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/kcluster/internal/analytics"
)

var tailed = []float64{0, 10, 10, 10, 10, 10, 10, 100}

func TestOutlierBounds_BothTails(t *testing.T) {
	bounds, err := OutlierBounds(tailed, 0.5, 2)
	require.NoError(t, err)
	assert.Equal(t, Bounds{Low: 0, High: 7}, bounds)
	assert.Equal(t, 2, bounds.Extra())

	extra, err := ExtraClusterCount(tailed, 0.5, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, extra)
}

func TestOutlierBounds_HighTailOnly(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10, 10, 10, 100}
	bounds, err := OutlierBounds(values, 0.5, 2)
	require.NoError(t, err)
	assert.Equal(t, NoBound, bounds.Low)
	assert.Equal(t, 7, bounds.High)
	assert.Equal(t, 1, bounds.Extra())
}

func TestOutlierBounds_NoOutliers(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"constant", []float64{5, 5, 5, 5, 5}},
		{"three points", []float64{0, 50, 1000}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds, err := OutlierBounds(tt.values, 0.5, 2)
			require.NoError(t, err)
			assert.Equal(t, Bounds{Low: NoBound, High: NoBound}, bounds)
			assert.Equal(t, 0, bounds.Extra())
		})
	}
}

func TestOutlierBounds_FullMiddleSkipsOnePerTail(t *testing.T) {
	// perc 1 still leaves one point per tail
	values := []float64{-100, 1, 2, 100}
	bounds, err := OutlierBounds(values, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Bounds{Low: 0, High: 3}, bounds)
}

func TestOutlierBounds_Errors(t *testing.T) {
	tests := []struct {
		name  string
		perc  float64
		sdevs float64
		input []float64
		kind  error
	}{
		{"sdevs below one", 0.5, 0.5, tailed, analytics.ErrInvalidParameter},
		{"perc above one", 1.5, 2, tailed, analytics.ErrInvalidParameter},
		{"perc negative", -0.1, 2, tailed, analytics.ErrInvalidParameter},
		{"perc NaN", math.NaN(), 2, tailed, analytics.ErrInvalidParameter},
		{"empty window", 0, 2, []float64{1, 2, 3, 4}, analytics.ErrInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutlierBounds(tt.input, tt.perc, tt.sdevs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}
