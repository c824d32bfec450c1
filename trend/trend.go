package trend

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/sartorproj/moneysupply/regression"
	"github.com/sartorproj/moneysupply/stats"
	"github.com/sartorproj/moneysupply/timeseries"
)

// Variant names one of the three chained trend regressions.
type Variant string

const (
	VariantLevel  Variant = "level"
	VariantLog    Variant = "log"
	VariantReturn Variant = "return"
)

// MonthsPerYear annualizes a monthly log return by summation.
const MonthsPerYear = 12

// DefaultDiagnosticLags is the residual ACF / Ljung-Box horizon when Options
// leaves it unset.
const DefaultDiagnosticLags = 12

// Options configures Run.
type Options struct {
	// Series selects columns to model; empty means every column except the
	// time index.
	Series []string
	// DiagnosticLags is the lag horizon of the residual diagnostics.
	DiagnosticLags int
}

// Fit is one regression of a series variant on the time index.
type Fit struct {
	Variant Variant
	Column  string
	*regression.Result
	Diagnostics *stats.Diagnostics
}

// AnnualizedGrowth returns 12 times the intercept of a return fit: the
// estimated next-period monthly log growth compounded additively over a
// year. It is NaN for the other variants.
func (f *Fit) AnnualizedGrowth() float64 {
	if f.Variant != VariantReturn {
		return math.NaN()
	}
	return MonthsPerYear * f.Intercept
}

// SeriesTrend holds the chained fits of one series. A failed variant leaves
// its fit and every later one nil and records the error.
type SeriesTrend struct {
	Series string
	Level  *Fit
	Log    *Fit
	Return *Fit
	Err    error
}

// Fits returns the non-nil fits in chain order.
func (s *SeriesTrend) Fits() []*Fit {
	var out []*Fit
	for _, f := range []*Fit{s.Level, s.Log, s.Return} {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Outcome is the result of Run. Table carries the time index and the log and
// log-difference columns of every series that got that far.
type Outcome struct {
	Table  *timeseries.Table
	Series []*SeriesTrend
}

// LogColumn and ReturnColumn name the derived columns of a series.
func LogColumn(series string) string    { return "log_" + series }
func ReturnColumn(series string) string { return "dlog_" + series }

// Run fits the level, log and return trends of every selected series. Series
// are modeled independently: an error in one is recorded on its SeriesTrend
// and never stops the others. Run itself fails only when the table cannot be
// indexed or a selected column does not exist.
func Run(table *timeseries.Table, opts Options) (*Outcome, error) {
	if opts.DiagnosticLags <= 0 {
		opts.DiagnosticLags = DefaultDiagnosticLags
	}

	var err error
	if _, ok := table.Column(timeseries.TimeColumn); !ok {
		table, err = table.WithTimeIndex()
		if err != nil {
			return nil, err
		}
	}
	t, _ := table.Column(timeseries.TimeColumn)

	names := opts.Series
	if len(names) == 0 {
		for _, name := range table.Names() {
			if name != timeseries.TimeColumn {
				names = append(names, name)
			}
		}
	}

	out := &Outcome{}
	for _, name := range names {
		values, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("trend: no column %q", name)
		}

		st, logged, returns := runSeries(name, t, values, opts.DiagnosticLags)
		if logged != nil {
			if table, err = table.WithColumn(LogColumn(name), logged); err != nil {
				return nil, err
			}
		}
		if returns != nil {
			if table, err = table.WithColumn(ReturnColumn(name), returns); err != nil {
				return nil, err
			}
		}
		out.Series = append(out.Series, st)
	}
	out.Table = table

	return out, nil
}

func runSeries(name string, t, values []float64, lags int) (st *SeriesTrend, logged, returns []float64) {
	logger := slog.Default().With("series", name)
	st = &SeriesTrend{Series: name}

	fail := func(v Variant, err error) {
		st.Err = fmt.Errorf("%s %s: %w", name, v, err)
		logger.Warn("Trend fit failed", "variant", v, "error", err)
	}

	level, err := fit(VariantLevel, name, t, values, lags)
	if err != nil {
		fail(VariantLevel, err)
		return st, nil, nil
	}
	st.Level = level

	logged, err = timeseries.Log(values)
	if err != nil {
		fail(VariantLog, err)
		return st, nil, nil
	}
	if st.Log, err = fit(VariantLog, LogColumn(name), t, logged, lags); err != nil {
		fail(VariantLog, err)
		return st, logged, nil
	}

	returns = timeseries.Diff(logged)
	if st.Return, err = fit(VariantReturn, ReturnColumn(name), t, returns, lags); err != nil {
		fail(VariantReturn, err)
		return st, logged, returns
	}

	logger.Debug("Trend fits complete",
		"level_r2", st.Level.RSquared,
		"log_r2", st.Log.RSquared,
		"return_intercept", st.Return.Intercept,
		"return_dw", st.Return.Diagnostics.DurbinWatson)

	return st, logged, returns
}

func fit(v Variant, column string, t, y []float64, lags int) (*Fit, error) {
	res, err := regression.Fit(t, y)
	if err != nil {
		return nil, err
	}
	return &Fit{
		Variant:     v,
		Column:      column,
		Result:      res,
		Diagnostics: stats.Diagnose(res.Residuals, lags),
	}, nil
}

// IsDataError reports whether err is one of the per-series data errors
// (insufficient data or a domain violation) rather than a programming error.
func IsDataError(err error) bool {
	return errors.Is(err, timeseries.ErrInsufficientData) || errors.Is(err, timeseries.ErrDomain)
}
