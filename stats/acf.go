package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ACF calculates the sample autocorrelation of values for lags 0 to maxLag.
// NaN entries are dropped first. It returns nil when the values have no
// variance or fewer than two entries.
func ACF(values []float64, maxLag int) []float64 {
	x := dropNaN(values)
	n := len(x)
	if n < 2 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(x, nil)
	denom := 0.0
	for _, v := range x {
		denom += (v - mean) * (v - mean)
	}
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (x[i] - mean) * (x[i-k] - mean)
		}
		acf[k] = sum / denom
	}
	return acf
}

// PACF calculates the partial autocorrelation for lags 0 to maxLag with the
// Durbin-Levinson recursion. pacf[0] is 1 by convention.
func PACF(values []float64, maxLag int) []float64 {
	acf := ACF(values, maxLag)
	if len(acf) < 2 {
		return nil
	}
	maxLag = len(acf) - 1

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1
	prev := []float64{acf[1]}
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num, den := acf[k], 1.0
		for j := 1; j < k; j++ {
			num -= prev[j-1] * acf[k-j]
			den -= prev[j-1] * acf[j]
		}
		if den == 0 {
			break
		}
		phi := num / den
		pacf[k] = phi

		next := make([]float64, k)
		for j := 1; j < k; j++ {
			next[j-1] = prev[j-1] - phi*prev[k-j-1]
		}
		next[k-1] = phi
		prev = next
	}
	return pacf
}

// ConfidenceBound returns the approximate 95% bound 1.96/sqrt(n) for
// autocorrelations of white noise of length n.
func ConfidenceBound(n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	return 1.96 / math.Sqrt(float64(n))
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
