package cluster

import (
	"math"
	"sort"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// gap is the absolute difference between values[Index] and values[Index+1]
type gap struct {
	Index int
	Size  float64
}

// BiggestBreaks returns the positions of the num largest absolute differences
// between adjacent values, largest first. Position i denotes the gap between
// values[i] and values[i+1]. Equal differences are ordered by position.
//
// When num equals len(values) every element is its own cluster and the
// positions 0..num-1 are returned without looking at the data.
func BiggestBreaks(values []float64, num int) ([]int, error) {
	return biggestBreaks("kbig", values, num)
}

func biggestBreaks(op string, values []float64, num int) ([]int, error) {
	pc := len(values)
	if pc < 1 {
		return nil, analytics.Errorf(op, analytics.ErrInsufficientData,
			"at least 1 point is required, given: %d", pc)
	}
	if num < 0 || num > pc {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"break count must be in [0,%d], given: %d", pc, num)
	}

	breaks := make([]int, num)
	if pc == num {
		for i := range breaks {
			breaks[i] = i
		}
		return breaks, nil
	}
	if pc == 1 {
		return nil, analytics.Errorf(op, analytics.ErrInternalInvariant,
			"invalid break count %d for a single point", num)
	}

	gaps := make([]gap, pc-1)
	for i := range gaps {
		gaps[i] = gap{Index: i, Size: math.Abs(values[i+1] - values[i])}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Size > gaps[j].Size
	})

	for i := range breaks {
		breaks[i] = gaps[i].Index
	}
	return breaks, nil
}
