package timeseries

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `observation_date,M2SL
2020-01-01,15400.2
2020-02-01,15460.8
2020-03-01,15999.1`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), "M2", nil)
	require.NoError(t, err)

	assert.Equal(t, "M2", series.Name)
	assert.Equal(t, []float64{15400.2, 15460.8, 15999.1}, series.Values())
	assert.Equal(t, month(2020, time.March), series.Observations[2].Date)
}

func TestLoadCSVMissingValues(t *testing.T) {
	csvData := `DATE,CURRSL
2020-01-01,1700
2020-02-01,.
2020-03-01,NA
2020-04-01,1810`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), "C", nil)
	require.NoError(t, err)

	// Missing values keep their row.
	require.Equal(t, 4, series.Len())
	assert.True(t, math.IsNaN(series.Observations[1].Value))
	assert.True(t, math.IsNaN(series.Observations[2].Value))
}

func TestLoadCSVNamedColumns(t *testing.T) {
	csvData := `when;M1SL;M2SL
2020-01-01;4000;15400
2020-02-01;4010;15460`

	opts := DefaultCSVOptions()
	opts.DateColumn = "when"
	opts.ValueColumn = "M1SL"
	opts.Delimiter = ';'

	series, err := LoadCSVFromReader(strings.NewReader(csvData), "M1", opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{4000, 4010}, series.Values())
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		csvData string
		opts    *CSVOptions
	}{
		{"no date column", "x,y\n1,2", nil},
		{"bad date", "date,y\n2020-13-01,2", nil},
		{"bad value", "date,y\n2020-01-01,abc", nil},
		{"header only", "date,y\n", nil},
		{"unknown value column", "date,y\n2020-01-01,1", &CSVOptions{ValueColumn: "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSVFromReader(strings.NewReader(tt.csvData), "S", tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoadCSV(t *testing.T) {
	s, err := New("M2", monthly(month(2020, time.January), 3), []float64{1.5, math.NaN(), 3.25})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "M2SL.csv")
	require.NoError(t, SaveCSV(s, path, "M2SL"))

	loaded, err := LoadCSV(path, "M2", nil)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())
	assert.Equal(t, 1.5, loaded.Observations[0].Value)
	assert.True(t, math.IsNaN(loaded.Observations[1].Value))
	assert.Equal(t, 3.25, loaded.Observations[2].Value)
}

func TestWriteCSV(t *testing.T) {
	s, err := New("M1", monthly(month(2020, time.January), 2), []float64{4000, 4010.5})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s, "M1SL"))
	assert.Equal(t, "date,M1SL\n2020-01-01,4000\n2020-02-01,4010.5\n", buf.String())
}
