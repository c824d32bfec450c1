package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sartorproj/moneysupply/stats"
)

func growthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "growth START END",
		Short: "Print (end-start)/start and (end-start)/end for two levels",
		Example: `  moneysupply growth 15434.1 19337.2
  moneysupply growth 1720.6 2035.6`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", args[0], err)
			}
			end, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", args[1], err)
			}

			g, err := stats.Growth(start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "of start: %.4f\nof end:   %.4f\n", g.OfStart, g.OfEnd)
			return nil
		},
	}
}
