package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: first date-like header)
	ValueColumn string // Column name for values (default: last column)
	DateFormat  string // Date format (default: "2006-01-02")
	Delimiter   rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns options matching a FRED CSV download.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateFormat: time.DateOnly,
		Delimiter:  ',',
	}
}

// LoadCSV loads the series name from a CSV file.
func LoadCSV(filename, name string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, name, opts)
}

// LoadCSVFromReader loads a series from an io.Reader. The first row must be a
// header. Empty, ".", "NA" and "NaN" values are kept as NaN observations.
func LoadCSVFromReader(r io.Reader, name string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	dateFormat := opts.DateFormat
	if dateFormat == "" {
		dateFormat = time.DateOnly
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	dateIdx, valueIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case opts.ValueColumn != "" && h == opts.ValueColumn:
			valueIdx = i
		case opts.DateColumn != "" && h == opts.DateColumn:
			dateIdx = i
		case opts.DateColumn == "" && dateIdx == -1 && isDateHeader(h):
			dateIdx = i
		}
	}
	if dateIdx == -1 {
		return nil, errors.New("csv has no date column")
	}
	if valueIdx == -1 {
		if opts.ValueColumn != "" {
			return nil, fmt.Errorf("csv has no column %q", opts.ValueColumn)
		}
		valueIdx = len(header) - 1
	}
	if valueIdx == dateIdx {
		return nil, errors.New("csv has no value column")
	}

	series := &Series{Name: name}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if dateIdx >= len(record) || valueIdx >= len(record) {
			return nil, fmt.Errorf("csv line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		dateStr := strings.TrimSpace(strings.Trim(record[dateIdx], "\""))
		date, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: parse date %q: %w", line, dateStr, err)
		}

		value, err := ParseValue(record[valueIdx])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		series.Observations = append(series.Observations, Observation{Date: Day(date), Value: value})
	}

	if series.Len() == 0 {
		return nil, errors.New("no observations found in CSV")
	}
	return series, nil
}

// ParseValue parses an observation value. Missing markers become NaN.
func ParseValue(raw string) (float64, error) {
	s := strings.TrimSpace(strings.Trim(raw, "\""))
	switch s {
	case "", ".", "NA", "NaN", "null":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", s, err)
	}
	return v, nil
}

func isDateHeader(h string) bool {
	switch strings.ToLower(h) {
	case "date", "observation_date", "ds", "month":
		return true
	}
	return false
}

// SaveCSV writes the series as a two-column CSV with header "date,<column>".
func SaveCSV(series *Series, filename, column string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o750); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, series, column); err != nil {
		return err
	}
	return file.Close()
}

// WriteCSV writes the series to w. NaN values are written as ".".
func WriteCSV(w io.Writer, series *Series, column string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", column}); err != nil {
		return err
	}
	for _, o := range series.Observations {
		value := "."
		if !math.IsNaN(o.Value) {
			value = strconv.FormatFloat(o.Value, 'f', -1, 64)
		}
		if err := writer.Write([]string{o.Date.Format(time.DateOnly), value}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
