// Package stats scores regression residuals and computes the summary ratios
// and serial-correlation diagnostics reported for each series.
//
// # Outlier Scoring
//
// Residuals of a return regression are standardized and counted against
// thresholds, over the whole sample and inside a window:
//
//	z, err := stats.ZScores(res.Residuals) // NaN rows dropped
//	w := stats.DateWindow(dates, jan2020, dec2020)
//	for _, e := range stats.Exceedances(z, []float64{3, 5}, w) {
//	    fmt.Println(e.Threshold, e.Total, e.InWindow)
//	}
//
// # Growth Ratios
//
//	g, err := stats.Growth(17878, 18656)
//	// g.OfStart == 0.0435, g.OfEnd == 0.0417
//
// # Serial Correlation
//
//	d := stats.Diagnose(res.Residuals, 12)
//	// d.DurbinWatson ~ 2 for no first-order autocorrelation
//	// d.LjungBox.PValue < 0.05 rejects "no autocorrelation up to lag 12"
package stats
