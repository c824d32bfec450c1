package stats

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/moneysupply/timeseries"
)

// ZScores standardizes values as (v - mean) / sd with the sample (n-1)
// standard deviation. NaN entries are dropped first, so the result is one
// shorter than a return regression's row-aligned residual vector.
//
// The empirical mean is used rather than the analytic zero of OLS residuals;
// for residuals the two agree to floating-point precision.
func ZScores(values []float64) ([]float64, error) {
	x := dropNaN(values)
	if len(x) < 2 {
		return nil, &timeseries.InsufficientDataError{Op: "z-score", Have: len(x), Need: 2}
	}

	mean, sd := stat.MeanStdDev(x, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, &timeseries.DomainError{Op: "z-score", Row: -1, Value: sd}
	}

	z := make([]float64, len(x))
	for i, v := range x {
		z[i] = (v - mean) / sd
	}
	return z, nil
}

// Window is a half-open range [Start, End) of row indices.
type Window struct {
	Start int
	End   int
}

// Clamp restricts w to [0, n).
func (w Window) Clamp(n int) Window {
	w.Start = max(0, min(w.Start, n))
	w.End = max(w.Start, min(w.End, n))
	return w
}

// Len returns the number of rows in w.
func (w Window) Len() int {
	return max(0, w.End-w.Start)
}

// DateWindow returns the rows of the ascending dates that fall within
// [from, to], both ends inclusive.
func DateWindow(dates []time.Time, from, to time.Time) Window {
	start := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(from) })
	end := sort.Search(len(dates), func(i int) bool { return dates[i].After(to) })
	if end < start {
		end = start
	}
	return Window{Start: start, End: end}
}

// CountAbove counts the entries of z strictly greater than k.
func CountAbove(z []float64, k float64) int {
	count := 0
	for _, v := range z {
		if v > k {
			count++
		}
	}
	return count
}

// Exceedance holds the two independent counts of z-scores above a threshold.
type Exceedance struct {
	Threshold float64
	Total     int // over the full vector
	InWindow  int // over the window rows only
}

// Exceedances counts z[i] > k for each threshold over the full vector and,
// separately, over window.
func Exceedances(z []float64, thresholds []float64, window Window) []Exceedance {
	w := window.Clamp(len(z))
	out := make([]Exceedance, len(thresholds))
	for i, k := range thresholds {
		out[i] = Exceedance{
			Threshold: k,
			Total:     CountAbove(z, k),
			InWindow:  CountAbove(z[w.Start:w.End], k),
		}
	}
	return out
}
