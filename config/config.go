// Package config loads moneysupply settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MONEYSUPPLY_FRED_API_KEY.
const EnvPrefix = "MONEYSUPPLY"

// Config is the full moneysupply configuration.
type Config struct {
	FRED        FREDConfig        `mapstructure:"fred"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Series      []SeriesConfig    `mapstructure:"series"`
	Range       RangeConfig       `mapstructure:"range"`
	Outliers    OutlierConfig     `mapstructure:"outliers"`
	Summary     SummaryConfig     `mapstructure:"summary"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// FREDConfig holds the FRED API credentials and client limits. The API key
// is never written back out.
type FREDConfig struct {
	APIKey            string        `mapstructure:"api_key" json:"-" yaml:"-"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// CacheConfig locates the SQLite observation cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SeriesConfig maps a table column name to a FRED series identifier.
type SeriesConfig struct {
	Name string `mapstructure:"name"`
	ID   string `mapstructure:"id"`
}

// RangeConfig bounds the fetched observations. Dates are YYYY-MM-DD and an
// empty End means the latest available month.
type RangeConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// OutlierConfig sets the z-score thresholds and the window whose
// exceedances are counted separately.
type OutlierConfig struct {
	Thresholds  []float64 `mapstructure:"thresholds"`
	WindowStart string    `mapstructure:"window_start"`
	WindowEnd   string    `mapstructure:"window_end"`
}

// SummaryConfig picks the two snapshot months compared by the growth ratios.
type SummaryConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// DiagnosticsConfig sets the lag horizon of the residual diagnostics.
type DiagnosticsConfig struct {
	Lags int `mapstructure:"lags"`
}

// LoggingConfig selects the slog level (debug, info, warn, error) and
// handler format (console, json).
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration into v: defaults, then the config file (cfgFile,
// or moneysupply.yaml in $HOME/.config/moneysupply or the working directory),
// then a .env file, then MONEYSUPPLY_* environment variables.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "moneysupply"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("moneysupply")
		v.SetConfigType("yaml")
	}

	// A missing .env is fine; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("fred.api_key", EnvPrefix+"_FRED_API_KEY", "FRED_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind FRED_API_KEY: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Cache.Path = ExpandPath(cfg.Cache.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("fred.timeout", "30s")
	v.SetDefault("fred.requests_per_minute", 120)
	v.SetDefault("fred.max_retries", 3)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "~/.cache/moneysupply/observations.db")

	v.SetDefault("series", []map[string]string{
		{"name": "M2", "id": "M2SL"},
		{"name": "M1", "id": "M1SL"},
		{"name": "C", "id": "CURRSL"},
	})

	v.SetDefault("range.start", "1959-01-01")
	v.SetDefault("range.end", "")

	v.SetDefault("outliers.thresholds", []float64{3, 5})
	v.SetDefault("outliers.window_start", "2020-01-01")
	v.SetDefault("outliers.window_end", "2020-12-01")

	v.SetDefault("summary.start", "2020-02-01")
	v.SetDefault("summary.end", "2021-02-01")

	v.SetDefault("diagnostics.lags", 12)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate checks the values Load cannot coerce.
func (c *Config) Validate() error {
	if len(c.Series) == 0 {
		return errors.New("config: at least one series is required")
	}
	seen := make(map[string]bool, len(c.Series))
	for _, s := range c.Series {
		if s.Name == "" || s.ID == "" {
			return fmt.Errorf("config: series entries need name and id, got %+v", s)
		}
		if seen[s.Name] {
			return fmt.Errorf("config: duplicate series name %q", s.Name)
		}
		seen[s.Name] = true
	}

	for key, value := range map[string]string{
		"range.start":           c.Range.Start,
		"range.end":             c.Range.End,
		"outliers.window_start": c.Outliers.WindowStart,
		"outliers.window_end":   c.Outliers.WindowEnd,
		"summary.start":         c.Summary.Start,
		"summary.end":           c.Summary.End,
	} {
		if _, err := ParseDate(value); err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
	}

	if c.FRED.RequestsPerMinute <= 0 {
		return fmt.Errorf("config: fred.requests_per_minute must be positive, got %d", c.FRED.RequestsPerMinute)
	}
	if c.FRED.MaxRetries < 0 {
		return fmt.Errorf("config: fred.max_retries must not be negative, got %d", c.FRED.MaxRetries)
	}
	if c.Diagnostics.Lags < 1 {
		return fmt.Errorf("config: diagnostics.lags must be at least 1, got %d", c.Diagnostics.Lags)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: invalid log format: %s", c.Logging.Format)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date. The empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Dates returns the parsed range, outlier window and summary snapshot dates.
// Validate has already checked them.
func (c *Config) Dates() (rangeStart, rangeEnd, windowStart, windowEnd, summaryStart, summaryEnd time.Time) {
	rangeStart, _ = ParseDate(c.Range.Start)
	rangeEnd, _ = ParseDate(c.Range.End)
	windowStart, _ = ParseDate(c.Outliers.WindowStart)
	windowEnd, _ = ParseDate(c.Outliers.WindowEnd)
	summaryStart, _ = ParseDate(c.Summary.Start)
	summaryEnd, _ = ParseDate(c.Summary.End)
	return
}
