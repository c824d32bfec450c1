package regression

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/moneysupply/timeseries"
)

func TestFitTextbook(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 5, 4, 5}

	res, err := Fit(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 2.2, res.Intercept, 1e-12)
	assert.InDelta(t, 0.6, res.Slope, 1e-12)
	assert.InDelta(t, math.Sqrt(0.88), res.InterceptSE, 1e-12)
	assert.InDelta(t, math.Sqrt(0.08), res.SlopeSE, 1e-12)
	assert.InDelta(t, 0.6, res.RSquared, 1e-12)
	assert.InDelta(t, math.Sqrt(0.8), res.ResidualSE, 1e-12)
	assert.Equal(t, 3, res.DF)
	assert.Equal(t, 5, res.NObs)
	assert.InDelta(t, 0.6/math.Sqrt(0.08), res.SlopeT, 1e-9)
	assert.True(t, res.SlopeP > 0 && res.SlopeP < 1)

	expected := []float64{-0.8, 0.6, 1.0, -0.6, -0.2}
	for i, e := range expected {
		assert.InDelta(t, e, res.Residuals[i], 1e-12)
	}
}

func TestFitExactLine(t *testing.T) {
	x := []float64{-5, -4, -3, -2, -1}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2 + 3*v
	}

	res, err := Fit(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2, res.Intercept, 1e-9)
	assert.InDelta(t, 3, res.Slope, 1e-9)
	assert.InDelta(t, 1, res.RSquared, 1e-12)
	assert.InDelta(t, 2, res.Predict(0), 1e-9)
}

func TestFitResidualMeanIsZero(t *testing.T) {
	n := 240
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i - n)
		y[i] = 9.5 + 0.006*x[i] + 0.01*math.Sin(float64(i)/3) + 0.002*math.Cos(float64(i)*1.7)
	}

	res, err := Fit(x, y)
	require.NoError(t, err)

	sum := 0.0
	for _, e := range res.Residuals {
		sum += e
	}
	assert.Less(t, math.Abs(sum/float64(n)), 1e-9)
}

func TestFitExcludesMissingRows(t *testing.T) {
	x := []float64{-5, -4, -3, -2, -1}
	y := []float64{math.NaN(), 4, 5, math.NaN(), 5}

	res, err := Fit(x, y)
	require.NoError(t, err)

	assert.Equal(t, 3, res.NObs)
	assert.Equal(t, 1, res.DF)
	require.Len(t, res.Residuals, 5)
	assert.True(t, math.IsNaN(res.Residuals[0]))
	assert.True(t, math.IsNaN(res.Residuals[3]))
	assert.Len(t, res.FittedResiduals(), 3)

	// Same fit as the complete rows alone.
	direct, err := Fit([]float64{-4, -3, -1}, []float64{4, 5, 5})
	require.NoError(t, err)
	assert.InDelta(t, direct.Intercept, res.Intercept, 1e-12)
	assert.InDelta(t, direct.Slope, res.Slope, 1e-12)
}

func TestFitInsufficientData(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"empty", nil, nil},
		{"single row", []float64{-1}, []float64{17878}},
		{"missing leaves one", []float64{-2, -1}, []float64{math.NaN(), 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.x, tt.y)
			var insufficient *timeseries.InsufficientDataError
			require.ErrorAs(t, err, &insufficient)
			assert.True(t, errors.Is(err, timeseries.ErrInsufficientData))
			assert.Equal(t, MinObservations, insufficient.Need)
		})
	}
}

func TestFitTwoRows(t *testing.T) {
	res, err := Fit([]float64{-3, -2, -1}, []float64{math.NaN(), 17878, 18656})
	require.NoError(t, err)

	assert.Equal(t, 2, res.NObs)
	assert.Equal(t, 0, res.DF)
	assert.InDelta(t, 778, res.Slope, 1e-9)
	assert.InDelta(t, 19434, res.Intercept, 1e-9)
	assert.True(t, math.IsNaN(res.SlopeSE))
	assert.True(t, math.IsNaN(res.InterceptT))
	assert.True(t, math.IsNaN(res.SlopeP))
	assert.True(t, math.IsNaN(res.ResidualSE))
}

func TestFitLengthMismatch(t *testing.T) {
	_, err := Fit([]float64{1, 2, 3}, []float64{1, 2})
	assert.Error(t, err)
}
