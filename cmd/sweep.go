package cmd

import (
	"fmt"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabclean/internal/outlier"
)

var (
	swpInput       inputFlags
	swpThresholds  []float64
	swpColumns     []string
	swpDropMissing bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <file>",
	Short: "Show how many rows a single global z-score threshold would keep",
	Long: `sweep applies one z-score threshold to every selected numeric column at once
and reports the surviving row count for each candidate threshold. It never writes
a cleaned table; use it to pick thresholds before running clean.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		thresholds := c.SweepThresholds
		if cmd.Flags().Changed("thresholds") {
			thresholds = swpThresholds
		}
		for _, thr := range thresholds {
			if !(thr > 0) {
				return &outlier.ConfigError{Field: "sweep_thresholds", Reason: fmt.Sprintf("must be > 0, got %v", thr)}
			}
		}
		t, err := swpInput.load(args[0])
		if err != nil {
			return err
		}
		if swpDropMissing {
			if t, err = t.DropMissing(); err != nil {
				return err
			}
		}
		points, err := outlier.Sweep(t, splitList(swpColumns), thresholds)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		tw := prettytable.NewWriter()
		tw.SetOutputMirror(out)
		tw.SetStyle(prettytable.StyleLight)
		tw.AppendHeader(prettytable.Row{"Threshold", "Rows before", "Rows after", "Retained"})
		for _, p := range points {
			tw.AppendRow(prettytable.Row{p.Threshold, p.RowsBefore, p.RowsAfter, fmt.Sprintf("%.1f%%", 100*p.Retained())})
		}
		tw.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	swpInput.bind(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&swpThresholds, "thresholds", outlier.DefaultSweepThresholds, "z-score thresholds to compare (overrides config)")
	sweepCmd.Flags().StringSliceVar(&swpColumns, "columns", nil, "columns to check (default: every numeric column)")
	sweepCmd.Flags().BoolVar(&swpDropMissing, "drop-missing", false, "drop rows with any missing value first")
}
