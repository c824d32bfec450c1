package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/moneysupply/config"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name    string
		lc      config.LoggingConfig
		wantErr bool
	}{
		{"console info", config.LoggingConfig{Level: "info", Format: "console"}, false},
		{"json debug", config.LoggingConfig{Level: "debug", Format: "json"}, false},
		{"bad level", config.LoggingConfig{Level: "trace", Format: "console"}, true},
		{"bad format", config.LoggingConfig{Level: "warn", Format: "logfmt"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setupLogging(tt.lc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGrowthCommand(t *testing.T) {
	out, err := execute(t, growthCmd(), "17878", "18656")
	require.NoError(t, err)
	assert.Equal(t, "of start: 0.0435\nof end:   0.0417\n", out)

	_, err = execute(t, growthCmd(), "0", "18656")
	assert.Error(t, err)

	_, err = execute(t, growthCmd(), "abc", "1")
	assert.Error(t, err)
}

func writeFREDCSV(t *testing.T, dir, id string, base, growth float64) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "observation_date,%s\n", id)
	for i := 0; i < 48; i++ {
		d := time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		v := base * math.Exp(growth*float64(i)+0.002*math.Sin(float64(i)))
		fmt.Fprintf(&b, "%s,%.1f\n", d.Format(time.DateOnly), v)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".csv"), []byte(b.String()), 0o600))
}

func TestRunCommandFromCSV(t *testing.T) {
	dir := t.TempDir()
	writeFREDCSV(t, dir, "M2SL", 13900, 0.005)
	writeFREDCSV(t, dir, "M1SL", 3600, 0.006)
	writeFREDCSV(t, dir, "CURRSL", 1550, 0.0055)

	cfgPath := filepath.Join(dir, "moneysupply.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cache:\n  enabled: false\nlogging:\n  level: error\n"), 0o600))

	out, err := execute(t, rootCmd, "run", "--config", cfgPath, "--csv-dir", dir, "--format", "json")
	require.NoError(t, err)

	var report struct {
		Rows   int `json:"rows"`
		Series []struct {
			Name   string   `json:"name"`
			Errors []string `json:"errors"`
			Growth *struct {
				OfStart float64 `json:"of_start"`
			} `json:"growth"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 48, report.Rows)
	require.Len(t, report.Series, 3)
	for i, name := range []string{"M2", "M1", "C"} {
		assert.Equal(t, name, report.Series[i].Name)
		assert.Empty(t, report.Series[i].Errors)
		assert.NotNil(t, report.Series[i].Growth)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, versionCmd())
	require.NoError(t, err)
	assert.Equal(t, "moneysupply dev\n", out)
}
