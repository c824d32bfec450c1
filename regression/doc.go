// Package regression fits straight-line trends by ordinary least squares.
//
// Coefficients are solved through a QR factorization of the [1, x] design
// matrix; standard errors come from the inverse of the normal equations,
// scaled by the unbiased residual variance SSR / (n - 2).
//
//	res, err := regression.Fit(t, logM2)
//	// res.Intercept is the prediction at x = 0
//	// res.Residuals[i] is NaN for rows excluded as missing
//
// Fewer than MinObservations complete rows fail with a
// timeseries.InsufficientDataError.
package regression
