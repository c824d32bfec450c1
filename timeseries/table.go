package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// TimeColumn is the name of the column holding the backward time index.
const TimeColumn = "t"

// Table is a set of equally long columns sharing one ascending date index.
// A Table is not modified after construction; WithColumn returns a new one.
type Table struct {
	dates   []time.Time
	names   []string
	columns map[string][]float64
}

// Align merges the series on the dates present in every input. The merge key
// is the calendar date, never the position. Rows come out ascending by date.
func Align(series ...*Series) (*Table, error) {
	if len(series) == 0 {
		return nil, &AlignmentError{Reason: "no series to align"}
	}

	byName := make(map[string]map[time.Time]float64, len(series))
	names := make([]string, 0, len(series))
	for _, s := range series {
		if s == nil || s.Name == "" {
			return nil, &AlignmentError{Reason: "series must be named"}
		}
		if _, dup := byName[s.Name]; dup {
			return nil, &AlignmentError{Reason: fmt.Sprintf("duplicate series %q", s.Name)}
		}
		if s.Len() == 0 {
			return nil, &AlignmentError{Reason: fmt.Sprintf("series %q is empty", s.Name)}
		}
		values := make(map[time.Time]float64, s.Len())
		for _, o := range s.Observations {
			d := Day(o.Date)
			if _, dup := values[d]; dup {
				return nil, &AlignmentError{
					Reason: fmt.Sprintf("series %q has more than one observation on %s", s.Name, d.Format(time.DateOnly)),
				}
			}
			values[d] = o.Value
		}
		byName[s.Name] = values
		names = append(names, s.Name)
	}

	var dates []time.Time
	for d := range byName[names[0]] {
		shared := true
		for _, name := range names[1:] {
			if _, ok := byName[name][d]; !ok {
				shared = false
				break
			}
		}
		if shared {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, &AlignmentError{Reason: "series share no dates"}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		col := make([]float64, len(dates))
		for i, d := range dates {
			col[i] = byName[name][d]
		}
		columns[name] = col
	}

	return &Table{dates: dates, names: names, columns: columns}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.dates)
}

// Dates returns a copy of the date index.
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Names returns the column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	col, ok := t.columns[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// WithColumn returns a table extended by one column. The column must have one
// value per row and a name not already in use.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if len(values) != len(t.dates) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.dates))
	}
	if _, exists := t.columns[name]; exists {
		return nil, fmt.Errorf("column %q already exists", name)
	}

	columns := make(map[string][]float64, len(t.columns)+1)
	for k, v := range t.columns {
		columns[k] = v
	}
	col := make([]float64, len(values))
	copy(col, values)
	columns[name] = col

	names := make([]string, 0, len(t.names)+1)
	names = append(names, t.names...)
	names = append(names, name)

	return &Table{dates: t.dates, names: names, columns: columns}, nil
}

// WithTimeIndex appends the backward time index as column TimeColumn.
func (t *Table) WithTimeIndex() (*Table, error) {
	idx, err := TimeIndex(t.Len())
	if err != nil {
		return nil, err
	}
	col := make([]float64, len(idx))
	for i, v := range idx {
		col[i] = float64(v)
	}
	return t.WithColumn(TimeColumn, col)
}

// Row returns the index of date in the table, or -1.
func (t *Table) Row(date time.Time) int {
	d := Day(date)
	i := sort.Search(len(t.dates), func(i int) bool { return !t.dates[i].Before(d) })
	if i < len(t.dates) && t.dates[i].Equal(d) {
		return i
	}
	return -1
}

// ValueAt returns the value of column name on date. It returns NaN and false
// when either is missing from the table.
func (t *Table) ValueAt(name string, date time.Time) (float64, bool) {
	col, ok := t.columns[name]
	if !ok {
		return math.NaN(), false
	}
	row := t.Row(date)
	if row < 0 {
		return math.NaN(), false
	}
	return col[row], true
}

// TimeIndex returns the offsets -n, -n+1, ..., -1. With this index the
// intercept of a trend fit is the prediction for the next, unobserved period.
func TimeIndex(n int) ([]int, error) {
	if n <= 0 {
		return nil, &InsufficientDataError{Op: "time index", Have: n, Need: 1}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i - n
	}
	return idx, nil
}
