package timeseries

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func monthly(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, i, 0)
	}
	return dates
}

func TestNew(t *testing.T) {
	s, err := New("M2", monthly(month(2020, time.January), 3), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1, 2, 3}, s.Values())

	_, err = New("M2", monthly(month(2020, time.January), 2), []float64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlignment))
}

func TestSorted(t *testing.T) {
	s := &Series{Name: "M1", Observations: []Observation{
		{Date: month(2020, time.March), Value: 3},
		{Date: month(2020, time.January), Value: 1},
		{Date: month(2020, time.February), Value: 2},
	}}

	sorted := s.Sorted()
	assert.Equal(t, []float64{1, 2, 3}, sorted.Values())
	assert.Equal(t, 3.0, s.Observations[0].Value, "original must be untouched")
}

func TestBetween(t *testing.T) {
	s, err := New("C", monthly(month(2020, time.January), 6), []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	sub := s.Between(month(2020, time.February), month(2020, time.April))
	assert.Equal(t, []float64{2, 3, 4}, sub.Values())

	open := s.Between(time.Time{}, month(2020, time.February))
	assert.Equal(t, []float64{1, 2}, open.Values())
}

func TestLog(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
		badRow   int
	}{
		{"powers of e", []float64{1, math.E, math.E * math.E}, []float64{0, 1, 2}, -1},
		{"nan passes", []float64{1, math.NaN()}, []float64{0, math.NaN()}, -1},
		{"zero", []float64{1, 0, 2}, nil, 1},
		{"negative", []float64{-3}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Log(tt.values)
			if tt.badRow >= 0 {
				var domainErr *DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.badRow, domainErr.Row)
				assert.True(t, errors.Is(err, ErrDomain))
				return
			}
			require.NoError(t, err)
			for i := range tt.expected {
				if math.IsNaN(tt.expected[i]) {
					assert.True(t, math.IsNaN(got[i]))
					continue
				}
				assert.InDelta(t, tt.expected[i], got[i], 1e-12)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	d := Diff([]float64{1, 3, 6, 10, 15})
	require.Len(t, d, 5)
	assert.True(t, math.IsNaN(d[0]))
	assert.Equal(t, []float64{2, 3, 4, 5}, d[1:])

	assert.Empty(t, Diff(nil))
}

func TestDiffCumSumRoundTrip(t *testing.T) {
	levels := []float64{15400.2, 15460.8, 15531.0, 15960.3, 17012.9, 17884.1, 18230.5}
	logged, err := Log(levels)
	require.NoError(t, err)

	rebuilt := CumSum(logged[0], Diff(logged))
	require.Len(t, rebuilt, len(logged))
	for i := range logged {
		assert.InDelta(t, logged[i], rebuilt[i], 1e-12, "row %d", i)
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	d := Day(time.Date(2020, time.May, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC), d)
}
