package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/moneysupply/pipeline"
	"github.com/sartorproj/moneysupply/regression"
	"github.com/sartorproj/moneysupply/stats"
	"github.com/sartorproj/moneysupply/trend"
)

func sampleReport(t *testing.T) *pipeline.Report {
	t.Helper()

	x := []float64{-6, -5, -4, -3, -2, -1}
	y := []float64{math.NaN(), 0.004, 0.006, 0.005, 0.0055, 0.0045}
	res, err := regression.Fit(x, y)
	require.NoError(t, err)

	growth, err := stats.Growth(17878, 18656)
	require.NoError(t, err)

	feb20 := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)
	feb21 := time.Date(2021, time.February, 1, 0, 0, 0, 0, time.UTC)

	return &pipeline.Report{
		RunID:       "4f1c6f0e-8a0b-4b8e-9a57-2f9b8f9c1d11",
		GeneratedAt: time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
		Rows:        6,
		First:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		Last:        time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
		Thresholds:  []float64{1, 5},
		WindowStart: time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC),
		Series: []*pipeline.SeriesReport{
			{
				Name: "M2",
				Trend: &trend.SeriesTrend{
					Series: "M2",
					Return: &trend.Fit{
						Variant:     trend.VariantReturn,
						Column:      "dlog_M2",
						Result:      res,
						Diagnostics: stats.Diagnose(res.Residuals, 2),
					},
				},
				ZScores: []float64{-1.5, 1.2, 0.1, 0.7, -0.5},
				ZDates: []time.Time{
					time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
				},
				Exceedances: []stats.Exceedance{
					{Threshold: 1, Total: 1, InWindow: 1},
					{Threshold: 5, Total: 0, InWindow: 0},
				},
				SummaryStart: feb20,
				SummaryEnd:   feb21,
				Growth:       &growth,
			},
			{
				Name:   "M1",
				Trend:  &trend.SeriesTrend{Series: "M1"},
				Errors: []error{errors.New("M1 log: log: value 0 at row 5 outside domain")},
			},
		},
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleReport(t)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "4f1c6f0e-8a0b-4b8e-9a57-2f9b8f9c1d11", got["run_id"])
	assert.Equal(t, "2020-01-01", got["first"])
	assert.Equal(t, map[string]any{"start": "2020-03-01", "end": "2020-04-01"}, got["window"])

	series := got["series"].([]any)
	require.Len(t, series, 2)

	m2 := series[0].(map[string]any)
	fits := m2["fits"].([]any)
	require.Len(t, fits, 1)
	fit := fits[0].(map[string]any)
	assert.Equal(t, "return", fit["variant"])
	assert.EqualValues(t, 5, fit["n_obs"])
	assert.Len(t, fit["acf"], 3)
	pacf := fit["pacf"].([]any)
	require.Len(t, pacf, 3)
	assert.Equal(t, 1.0, pacf[0])
	assert.InDelta(t, 1.96/math.Sqrt(5), fit["acf_bound"], 1e-12)

	growth := m2["growth"].(map[string]any)
	assert.Equal(t, 0.0435, growth["of_start"])
	assert.Equal(t, 0.0417, growth["of_end"])
	assert.Equal(t, "2021-02-01", growth["end_date"])

	outliers := m2["outliers"].([]any)
	require.Len(t, outliers, 1)
	assert.Equal(t, "2020-03-01", outliers[0].(map[string]any)["date"])

	m1 := series[1].(map[string]any)
	assert.Equal(t, []any{}, m1["fits"])
	assert.Len(t, m1["errors"], 1)
	assert.NotContains(t, m1, "growth")
}

func TestFloatMarshalsNaNAsNull(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		b, err := json.Marshal(Float(v))
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	}
	b, err := json.Marshal(Float(0.0435))
	require.NoError(t, err)
	assert.Equal(t, "0.0435", string(b))
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleReport(t)))
	out := buf.String()

	assert.Contains(t, out, "Money supply trend report")
	assert.Contains(t, out, "M2")
	assert.Contains(t, out, "return")
	assert.Contains(t, out, "annualized")
	assert.Contains(t, out, "z > 1: 1 of 5 months, 1 in 2020-03-01 .. 2020-04-01")
	assert.Contains(t, out, "growth 0.0435 of start, 0.0417 of end")
	assert.Contains(t, out, "error: M1 log")
}
