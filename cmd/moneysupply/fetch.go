package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sartorproj/moneysupply/timeseries"
)

func fetchCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the configured series into the cache",
		Long: `Fetch every configured series from FRED, storing the observations in the
local cache. With --out-dir each series is also written as <dir>/<FRED ID>.csv,
which "moneysupply run --csv-dir" can read back offline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			series, err := fetchSeries(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			for i, s := range series {
				id := cfg.Series[i].ID
				slog.Info("Fetched series", "name", s.Name, "id", id, "observations", s.Len())
				if outDir == "" {
					continue
				}
				path := filepath.Join(outDir, id+".csv")
				if err := timeseries.SaveCSV(s, path, id); err != nil {
					return fmt.Errorf("%s: %w", s.Name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "also write each series as CSV into this directory")

	return cmd
}
