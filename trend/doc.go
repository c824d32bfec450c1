// Package trend runs the chained trend regressions used to strip serial
// correlation from a money-supply series.
//
// Each series is regressed on the backward time index three times:
//
//   - level:  value            ~ a + b*t
//   - log:    log(value)       ~ a + b*t
//   - return: diff(log(value)) ~ a + b*t
//
// The intercept of the return fit is the estimated monthly continuously
// compounded growth rate for the next period; AnnualizedGrowth scales it by
// twelve. Each fit carries residual diagnostics (Durbin-Watson, Ljung-Box,
// ACF) so the drop in autocorrelation along the chain can be read off.
//
//	out, err := trend.Run(table, trend.Options{DiagnosticLags: 12})
//	for _, s := range out.Series {
//	    if s.Err != nil {
//	        continue // the other series are unaffected
//	    }
//	    fmt.Println(s.Series, s.Return.AnnualizedGrowth())
//	}
package trend
