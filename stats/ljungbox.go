package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests residuals for autocorrelation up to lag h. The null
// hypothesis is no autocorrelation; a small p-value rejects it. fitdf is the
// number of estimated parameters subtracted from the degrees of freedom.
// It returns nil when fewer than 10 values remain after dropping NaN.
func LjungBox(residuals []float64, lags, fitdf int) *LjungBoxResult {
	x := dropNaN(residuals)
	n := len(x)
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(x, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	chi2 := distuv.ChiSquared{K: float64(dof)}
	return &LjungBoxResult{
		Statistic: q,
		PValue:    chi2.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// DurbinWatson calculates the Durbin-Watson statistic for first-order
// autocorrelation: about 2 for none, towards 0 for positive and towards 4
// for negative autocorrelation. NaN residuals are dropped; NaN is returned
// when fewer than two remain or all are zero.
func DurbinWatson(residuals []float64) float64 {
	x := dropNaN(residuals)
	if len(x) < 2 {
		return math.NaN()
	}

	num, den := 0.0, 0.0
	for i, r := range x {
		den += r * r
		if i > 0 {
			d := r - x[i-1]
			num += d * d
		}
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// Diagnostics summarizes the serial correlation left in a residual vector.
type Diagnostics struct {
	DurbinWatson float64
	LjungBox     *LjungBoxResult
	ACF          []float64
	PACF         []float64
	ACFBound     float64
}

// Diagnose computes Durbin-Watson, Ljung-Box and the residual ACF and PACF up
// to lags.
func Diagnose(residuals []float64, lags int) *Diagnostics {
	x := dropNaN(residuals)
	return &Diagnostics{
		DurbinWatson: DurbinWatson(x),
		LjungBox:     LjungBox(x, lags, 0),
		ACF:          ACF(x, lags),
		PACF:         PACF(x, lags),
		ACFBound:     ConfidenceBound(len(x)),
	}
}
