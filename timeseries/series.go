package timeseries

import (
	"math"
	"sort"
	"time"
)

// Observation is one dated value of a named series. A NaN value marks an
// explicitly missing observation.
type Observation struct {
	Date  time.Time
	Value float64
}

// Series represents a named sequence of observations.
type Series struct {
	Name         string
	Observations []Observation
}

// New creates a series from parallel date and value slices.
func New(name string, dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, &AlignmentError{Reason: "dates and values must have the same length"}
	}
	obs := make([]Observation, len(values))
	for i := range values {
		obs[i] = Observation{Date: dates[i], Value: values[i]}
	}
	return &Series{Name: name, Observations: obs}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Observations)
}

// Values returns a copy of the observation values.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Value
	}
	return out
}

// Dates returns a copy of the observation dates.
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Date
	}
	return out
}

// Sorted returns a copy of the series ordered ascending by date.
func (s *Series) Sorted() *Series {
	obs := make([]Observation, len(s.Observations))
	copy(obs, s.Observations)
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
	return &Series{Name: s.Name, Observations: obs}
}

// Between returns the observations with start <= date <= end. A zero start or
// end leaves that side open.
func (s *Series) Between(start, end time.Time) *Series {
	out := make([]Observation, 0, len(s.Observations))
	for _, o := range s.Observations {
		if !start.IsZero() && o.Date.Before(start) {
			continue
		}
		if !end.IsZero() && o.Date.After(end) {
			continue
		}
		out = append(out, o)
	}
	return &Series{Name: s.Name, Observations: out}
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Log applies the natural logarithm elementwise. NaN entries stay NaN; any
// value <= 0 fails with a DomainError naming the first offending row.
func Log(values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case v <= 0:
			return nil, &DomainError{Op: "log", Row: i, Value: v}
		default:
			out[i] = math.Log(v)
		}
	}
	return out, nil
}

// Diff returns the first difference aligned to the input rows: out[0] is NaN
// and out[i] = values[i] - values[i-1].
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}

// CumSum inverts Diff: starting from first, it re-accumulates diffs[1:].
// diffs[0] is ignored.
func CumSum(first float64, diffs []float64) []float64 {
	out := make([]float64, len(diffs))
	if len(diffs) == 0 {
		return out
	}
	out[0] = first
	for i := 1; i < len(diffs); i++ {
		out[i] = out[i-1] + diffs[i]
	}
	return out
}
