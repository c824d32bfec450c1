package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sartorproj/moneysupply/stats"
	"github.com/sartorproj/moneysupply/timeseries"
	"github.com/sartorproj/moneysupply/trend"
)

// ErrMissingSnapshot is returned when a summary date is not a row of the
// aligned table.
var ErrMissingSnapshot = errors.New("snapshot date not in aligned table")

// DefaultThresholds are the z-score cut-offs used when Options leaves them
// empty.
var DefaultThresholds = []float64{3, 5}

// Options configures Run. Zero dates leave the corresponding feature open:
// a zero window bound extends to that end of the data, and a zero summary
// date skips the growth ratios.
type Options struct {
	Thresholds     []float64
	WindowStart    time.Time
	WindowEnd      time.Time
	SummaryStart   time.Time
	SummaryEnd     time.Time
	DiagnosticLags int
}

// Report is the result of one pipeline run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Rows        int
	First       time.Time
	Last        time.Time
	Thresholds  []float64
	WindowStart time.Time
	WindowEnd   time.Time
	Series      []*SeriesReport
}

// SeriesReport collects everything computed for one series. Errors holds
// every stage that failed; the stages that succeeded are still populated.
type SeriesReport struct {
	Name  string
	Trend *trend.SeriesTrend

	// ZScores standardize the return-fit residuals; ZDates are their rows.
	ZScores     []float64
	ZDates      []time.Time
	Window      stats.Window
	Exceedances []stats.Exceedance

	SummaryStart time.Time
	SummaryEnd   time.Time
	Growth       *stats.GrowthRatios

	Errors []error
}

// Failed reports whether any stage failed for this series.
func (s *SeriesReport) Failed() bool {
	return len(s.Errors) > 0
}

// Run aligns the series, fits the trend chain, scores the return residuals
// and computes the growth ratios. Only alignment and time indexing fail the
// whole run; everything later is recorded per series.
func Run(ctx context.Context, series []*timeseries.Series, opts Options) (*Report, error) {
	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)

	if len(opts.Thresholds) == 0 {
		opts.Thresholds = DefaultThresholds
	}

	table, err := timeseries.Align(series...)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	dates := table.Dates()
	logger.Info("Aligned series", "series", len(series), "rows", table.Len(),
		"first", dates[0].Format(time.DateOnly), "last", dates[len(dates)-1].Format(time.DateOnly))

	if table, err = table.WithTimeIndex(); err != nil {
		return nil, fmt.Errorf("time index: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(series))
	for _, s := range series {
		names = append(names, s.Name)
	}
	outcome, err := trend.Run(table, trend.Options{Series: names, DiagnosticLags: opts.DiagnosticLags})
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}

	report := &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Rows:        table.Len(),
		First:       dates[0],
		Last:        dates[len(dates)-1],
		Thresholds:  opts.Thresholds,
		WindowStart: opts.WindowStart,
		WindowEnd:   opts.WindowEnd,
	}

	for _, st := range outcome.Series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sr := &SeriesReport{Name: st.Series, Trend: st}
		if st.Err != nil {
			sr.Errors = append(sr.Errors, st.Err)
		}
		if st.Return != nil {
			scoreOutliers(sr, st.Return, dates, opts)
		}
		summarize(sr, table, opts)

		l := logger.With("series", sr.Name)
		if sr.Failed() {
			l.Warn("Series completed with errors", "errors", len(sr.Errors))
		} else {
			l.Info("Series complete",
				"annualized_growth", st.Return.AnnualizedGrowth(),
				"exceedances", len(sr.Exceedances))
		}
		report.Series = append(report.Series, sr)
	}

	return report, nil
}

func scoreOutliers(sr *SeriesReport, fit *trend.Fit, dates []time.Time, opts Options) {
	z, err := stats.ZScores(fit.Residuals)
	if err != nil {
		sr.Errors = append(sr.Errors, fmt.Errorf("%s z-score: %w", sr.Name, err))
		return
	}

	zDates := make([]time.Time, 0, len(z))
	for i, r := range fit.Residuals {
		if !math.IsNaN(r) {
			zDates = append(zDates, dates[i])
		}
	}

	from, to := opts.WindowStart, opts.WindowEnd
	if from.IsZero() {
		from = zDates[0]
	}
	if to.IsZero() {
		to = zDates[len(zDates)-1]
	}

	sr.ZScores = z
	sr.ZDates = zDates
	sr.Window = stats.DateWindow(zDates, from, to)
	sr.Exceedances = stats.Exceedances(z, opts.Thresholds, sr.Window)
}

func summarize(sr *SeriesReport, table *timeseries.Table, opts Options) {
	if opts.SummaryStart.IsZero() || opts.SummaryEnd.IsZero() {
		return
	}
	sr.SummaryStart, sr.SummaryEnd = opts.SummaryStart, opts.SummaryEnd

	start, ok := table.ValueAt(sr.Name, opts.SummaryStart)
	if !ok {
		sr.Errors = append(sr.Errors, fmt.Errorf("%s growth: %w: %s", sr.Name, ErrMissingSnapshot, opts.SummaryStart.Format(time.DateOnly)))
		return
	}
	end, ok := table.ValueAt(sr.Name, opts.SummaryEnd)
	if !ok {
		sr.Errors = append(sr.Errors, fmt.Errorf("%s growth: %w: %s", sr.Name, ErrMissingSnapshot, opts.SummaryEnd.Format(time.DateOnly)))
		return
	}

	g, err := stats.Growth(start, end)
	if err != nil {
		sr.Errors = append(sr.Errors, fmt.Errorf("%s growth: %w", sr.Name, err))
		return
	}
	sr.Growth = &g
}
