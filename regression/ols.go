package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/moneysupply/timeseries"
)

// MinObservations is the smallest number of complete rows Fit accepts. With
// exactly two rows the line is determined but DF is zero, so the standard
// errors, t statistics and p-values are NaN.
const MinObservations = 2

// Result is an ordinary least squares fit of y = a + b*x.
// It is never modified after Fit returns it.
type Result struct {
	Intercept   float64
	Slope       float64
	InterceptSE float64
	SlopeSE     float64
	InterceptT  float64
	SlopeT      float64
	InterceptP  float64
	SlopeP      float64

	RSquared   float64
	ResidualSE float64 // sqrt(SSR / DF)
	DF         int     // NObs - 2
	NObs       int     // rows used in the fit

	// Residuals has one entry per input row; rows excluded for a missing
	// value hold NaN.
	Residuals []float64
}

// Fit regresses y on x by ordinary least squares with an intercept. Rows
// where x or y is NaN are excluded from the fit, not imputed.
func Fit(x, y []float64) (*Result, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("ols: x has %d rows, y has %d", len(x), len(y))
	}

	rows := make([]int, 0, len(y))
	for i := range y {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		rows = append(rows, i)
	}
	n := len(rows)
	if n < MinObservations {
		return nil, &timeseries.InsufficientDataError{Op: "ols", Have: n, Need: MinObservations}
	}

	design := mat.NewDense(n, 2, nil)
	response := mat.NewVecDense(n, nil)
	for r, i := range rows {
		design.Set(r, 0, 1)
		design.Set(r, 1, x[i])
		response.SetVec(r, y[i])
	}

	var qr mat.QR
	qr.Factorize(design)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, response); err != nil {
		return nil, fmt.Errorf("ols: solve: %w", err)
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, design.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, fmt.Errorf("ols: design matrix is singular")
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("ols: invert normal equations: %w", err)
	}

	intercept, slope := beta.AtVec(0), beta.AtVec(1)

	residuals := make([]float64, len(y))
	for i := range residuals {
		residuals[i] = math.NaN()
	}
	fitted := make([]float64, n)
	observed := make([]float64, n)
	ssr := 0.0
	for r, i := range rows {
		fitted[r] = intercept + slope*x[i]
		observed[r] = y[i]
		e := y[i] - fitted[r]
		residuals[i] = e
		ssr += e * e
	}

	df := n - 2
	s2 := math.NaN()
	if df > 0 {
		s2 = ssr / float64(df)
	}
	res := &Result{
		Intercept:   intercept,
		Slope:       slope,
		InterceptSE: math.Sqrt(s2 * cov.At(0, 0)),
		SlopeSE:     math.Sqrt(s2 * cov.At(1, 1)),
		RSquared:    stat.RSquaredFrom(fitted, observed, nil),
		ResidualSE:  math.Sqrt(s2),
		DF:          df,
		NObs:        n,
		Residuals:   residuals,
	}
	res.InterceptT, res.InterceptP = tTest(res.Intercept, res.InterceptSE, df)
	res.SlopeT, res.SlopeP = tTest(res.Slope, res.SlopeSE, df)

	return res, nil
}

// tTest returns the t statistic of a coefficient and its two-sided p-value.
func tTest(coef, se float64, df int) (tStat, p float64) {
	if df < 1 || math.IsNaN(se) {
		return math.NaN(), math.NaN()
	}
	if se == 0 {
		return math.Inf(sign(coef)), 0
	}
	tStat = coef / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return tStat, 2 * dist.Survival(math.Abs(tStat))
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

// FittedResiduals returns the residuals of the rows used in the fit, in row
// order.
func (r *Result) FittedResiduals() []float64 {
	out := make([]float64, 0, r.NObs)
	for _, e := range r.Residuals {
		if !math.IsNaN(e) {
			out = append(out, e)
		}
	}
	return out
}

// Predict returns the fitted value at x.
func (r *Result) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}
