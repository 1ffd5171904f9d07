package cluster

import (
	"math"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// NoBound marks an absent outlier boundary
const NoBound = -1

// Bounds holds the positions of the closest-to-center low and high outliers.
// Either may be NoBound.
type Bounds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Extra returns how many extra clusters the present bounds imply (0, 1 or 2).
func (b Bounds) Extra() int {
	extra := 0
	if b.Low != NoBound {
		extra++
	}
	if b.High != NoBound {
		extra++
	}
	return extra
}

// OutlierBounds looks for a low and a high tail that sit outside a band of
// sdevs population standard deviations around the mean of the central
// window. perc is the fraction of the data treated as central; the rest is
// split evenly between both tails (at least one point per tail).
//
// The low tail is scanned from the window edge towards index 0 and the high
// tail from the window edge towards the end; the first point outside the band
// in each direction becomes the boundary. Sequences of three points or fewer
// never report outliers.
func OutlierBounds(values []float64, perc float64, sdevs float64) (Bounds, error) {
	return outlierBounds("outlier_bounds", values, perc, sdevs)
}

// ExtraClusterCount returns the number of outlier tails (0, 1 or 2) found by
// OutlierBounds.
func ExtraClusterCount(values []float64, perc float64, sdevs float64) (int, error) {
	b, err := outlierBounds("outlier_count", values, perc, sdevs)
	if err != nil {
		return 0, err
	}
	return b.Extra(), nil
}

func outlierBounds(op string, values []float64, perc float64, sdevs float64) (Bounds, error) {
	bounds := Bounds{Low: NoBound, High: NoBound}

	if sdevs < 1 {
		return bounds, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"standard deviation count must be >= 1, given: %g", sdevs)
	}
	if math.IsNaN(perc) || perc < 0 || perc > 1 {
		return bounds, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"middle percentage must be in [0,1], given: %g", perc)
	}

	n := len(values)
	if n <= 3 {
		return bounds, nil
	}

	skip := int(math.Floor(math.Floor((1.0-perc)*float64(n)) / 2.0))
	if skip <= 0 {
		skip = 1
	}
	if n-2*skip < 1 {
		return bounds, analytics.Errorf(op, analytics.ErrInsufficientData,
			"no points for middle average using n=%d, perc=%g", n, perc)
	}

	mean, std := popMeanStdDev(values[skip : n-skip])

	low := mean - sdevs*std
	for i := skip - 1; i >= 0; i-- {
		if values[i] < low {
			bounds.Low = i
			break
		}
	}

	high := mean + sdevs*std
	for i := n - 1 - skip; i < n; i++ {
		if values[i] > high {
			bounds.High = i
			break
		}
	}

	return bounds, nil
}
