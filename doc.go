// Package moneysupply analyzes the growth of the U.S. monetary aggregates
// (M2, M1 and currency in circulation).
//
// The work is split across small packages:
//
//   - timeseries: observations, inner-join alignment on dates, the backward
//     time index, log and difference transforms, CSV input and output
//   - regression: ordinary least squares of a series on the time index
//   - stats: residual diagnostics (ACF, Ljung-Box, Durbin-Watson), z-scores,
//     threshold exceedance counts and growth ratios
//   - trend: the level, log and log-difference trend chain per series
//   - pipeline: one end-to-end run over a set of series
//   - fred: FRED API client and SQLite observation cache
//   - config, render: settings and report output for cmd/moneysupply
//
// # Quick Start
//
//	series, err := fred.FetchAll(ctx, fred.NewClient(apiKey), []fred.SeriesRequest{
//	    {Name: "M2", ID: "M2SL"},
//	    {Name: "M1", ID: "M1SL"},
//	    {Name: "C", ID: "CURRSL"},
//	}, time.Time{}, time.Time{}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := pipeline.Run(ctx, series, pipeline.Options{
//	    Thresholds:   []float64{3, 5},
//	    WindowStart:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
//	    WindowEnd:    time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC),
//	    SummaryStart: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
//	    SummaryEnd:   time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
//	})
//
// # Time index
//
// Rows are indexed -N..-1 rather than 1..N, so the intercept of every trend
// fit is the model's value for the next, not yet observed, month. For the
// log-difference fit that intercept is the expected monthly growth rate.
package moneysupply
