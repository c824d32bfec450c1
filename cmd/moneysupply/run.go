package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sartorproj/moneysupply/config"
	"github.com/sartorproj/moneysupply/fred"
	"github.com/sartorproj/moneysupply/pipeline"
	"github.com/sartorproj/moneysupply/render"
	"github.com/sartorproj/moneysupply/timeseries"
)

func runCmd() *cobra.Command {
	var (
		csvDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the configured series and print the trend report",
		Long: `Fetch (or read from --csv-dir) every configured series, align them on their
common dates, and report the trend fits, z-score exceedances and growth ratios.

CSV files are looked up as <dir>/<FRED ID>.csv, in the format FRED downloads use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			ctx := cmd.Context()
			var (
				series []*timeseries.Series
				err    error
			)
			if csvDir != "" {
				series, err = loadCSVDir(csvDir, cfg)
			} else {
				series, err = fetchSeries(ctx, cfg)
			}
			if err != nil {
				return err
			}

			_, _, windowStart, windowEnd, summaryStart, summaryEnd := cfg.Dates()
			report, err := pipeline.Run(ctx, series, pipeline.Options{
				Thresholds:     cfg.Outliers.Thresholds,
				WindowStart:    windowStart,
				WindowEnd:      windowEnd,
				SummaryStart:   summaryStart,
				SummaryEnd:     summaryEnd,
				DiagnosticLags: cfg.Diagnostics.Lags,
			})
			if err != nil {
				return err
			}

			if format == "json" {
				return render.JSON(cmd.OutOrStdout(), report)
			}
			return render.Text(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&csvDir, "csv-dir", "", "read series from CSV files in this directory instead of FRED")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json)")

	return cmd
}

func loadCSVDir(dir string, c *config.Config) ([]*timeseries.Series, error) {
	start, end, _, _, _, _ := c.Dates()
	out := make([]*timeseries.Series, 0, len(c.Series))
	for _, sc := range c.Series {
		s, err := timeseries.LoadCSV(filepath.Join(dir, sc.ID+".csv"), sc.Name, timeseries.DefaultCSVOptions())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Name, err)
		}
		out = append(out, s.Between(start, end))
	}
	return out, nil
}

func seriesRequests(series []config.SeriesConfig) []fred.SeriesRequest {
	reqs := make([]fred.SeriesRequest, len(series))
	for i, sc := range series {
		reqs[i] = fred.SeriesRequest{Name: sc.Name, ID: sc.ID}
	}
	return reqs
}

// newFetcher builds the FRED client, wrapped in the SQLite cache when it is
// enabled. The returned close function is never nil.
func newFetcher(ctx context.Context, c *config.Config) (fred.Fetcher, func(), error) {
	retry := fred.DefaultRetryOptions()
	retry.MaxAttempts = c.FRED.MaxRetries + 1

	opts := []fred.Option{
		fred.WithBaseURL(c.FRED.BaseURL),
		fred.WithRateLimit(c.FRED.RequestsPerMinute),
		fred.WithRetryOptions(retry),
	}
	if c.FRED.Timeout > 0 {
		opts = append(opts, fred.WithHTTPClient(&http.Client{Timeout: c.FRED.Timeout}))
	}
	client := fred.NewClient(c.FRED.APIKey, opts...)

	if !c.Cache.Enabled {
		return client, func() {}, nil
	}
	cache, err := fred.OpenCache(ctx, c.Cache.Path)
	if err != nil {
		return nil, nil, err
	}
	return fred.NewCachedFetcher(client, cache), func() {
		if err := cache.Close(); err != nil {
			slog.Warn("Failed to close cache", "error", err)
		}
	}, nil
}

func fetchSeries(ctx context.Context, c *config.Config) ([]*timeseries.Series, error) {
	fetcher, closeFn, err := newFetcher(ctx, c)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	start, end, _, _, _, _ := c.Dates()
	reqs := seriesRequests(c.Series)

	bar := progressbar.NewOptions(len(reqs),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("Fetching series"),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	return fred.FetchAll(ctx, fetcher, reqs, start, end, func(fred.SeriesRequest) {
		_ = bar.Add(1)
	})
}
