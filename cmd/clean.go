package cmd

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabclean/internal/config"
	"github.com/KaramelBytes/tabclean/internal/outlier"
	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/KaramelBytes/tabclean/internal/utils"
)

var (
	clnInput      inputFlags
	clnRun        runFlags
	clnOutputPath string
	clnReportPath string
	clnProfile    bool
)

// runFlags are the strategy and threshold flags shared by clean and clean-batch.
type runFlags struct {
	zscore      []string
	iqrLeft     []string
	iqrRight    []string
	threshold   float64
	multiplier  float64
	lowerPct    float64
	upperPct    float64
	dropMissing bool
	sequential  bool
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.zscore, "zscore", nil, "columns filtered by z-score (comma-separated, repeatable)")
	cmd.Flags().StringSliceVar(&f.iqrLeft, "iqr-left", nil, "columns filtered by IQR on the low tail")
	cmd.Flags().StringSliceVar(&f.iqrRight, "iqr-right", nil, "columns filtered by IQR on the high tail")
	cmd.Flags().Float64Var(&f.threshold, "threshold", outlier.DefaultZScoreThreshold, "z-score threshold t (overrides config)")
	cmd.Flags().Float64Var(&f.multiplier, "multiplier", outlier.DefaultIQRMultiplier, "IQR multiplier k (overrides config)")
	cmd.Flags().Float64Var(&f.lowerPct, "q-low", outlier.DefaultLowerPercentile, "IQR lower cut point in [0,1] (overrides config)")
	cmd.Flags().Float64Var(&f.upperPct, "q-high", outlier.DefaultUpperPercentile, "IQR upper cut point in [0,1] (overrides config)")
	cmd.Flags().BoolVar(&f.dropMissing, "drop-missing", false, "drop rows with any missing value before outlier removal")
	cmd.Flags().BoolVar(&f.sequential, "sequential", false, "filter column groups one after another instead of concurrently")
}

// resolve layers explicitly set flags over the configuration. Group flags
// replace the configured columns as a whole.
func (f *runFlags) resolve(cmd *cobra.Command, c *cfgpkg.Global) (outlier.Options, outlier.Plan) {
	opts := c.Options()
	fl := cmd.Flags()
	if fl.Changed("threshold") {
		opts.ZScoreThreshold = f.threshold
	}
	if fl.Changed("multiplier") {
		opts.IQRMultiplier = f.multiplier
	}
	if fl.Changed("q-low") {
		opts.LowerPercentile = f.lowerPct
	}
	if fl.Changed("q-high") {
		opts.UpperPercentile = f.upperPct
	}
	if f.sequential {
		opts.Parallel = false
	}
	plan := c.Columns
	if fl.Changed("zscore") || fl.Changed("iqr-left") || fl.Changed("iqr-right") {
		plan = outlier.Plan{
			ZScore:   splitList(f.zscore),
			IQRLeft:  splitList(f.iqrLeft),
			IQRRight: splitList(f.iqrRight),
		}
	}
	return opts, plan
}

// cleanReport is the file written by --report.
type cleanReport struct {
	Source         string          `yaml:"source" json:"source"`
	Options        outlier.Options `yaml:"options" json:"options"`
	MissingDropped int             `yaml:"missing_dropped" json:"missing_dropped"`
	outlier.Result `yaml:",inline"`
}

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Remove outliers column group by column group and write the cleaned table",
	Long: `Assign numeric columns to strategies with --zscore, --iqr-left and --iqr-right
(or the columns section of the config file). Unassigned columns pass through.
The cleaned CSV goes to --output, or to stdout when no output path is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opts, plan := clnRun.resolve(cmd, c)

		log, err := newLogger(cmd, c)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		p, err := outlier.New(opts, log)
		if err != nil {
			return err
		}

		t, err := clnInput.load(path)
		if err != nil {
			return err
		}
		loaded := t.Rows()
		if clnRun.dropMissing {
			if t, err = t.DropMissing(); err != nil {
				return err
			}
		}

		// stdout carries the CSV unless it goes to a file.
		diag := cmd.OutOrStdout()
		if clnOutputPath == "" {
			diag = cmd.ErrOrStderr()
		}
		if plan.Empty() {
			fmt.Fprintln(diag, "⚠ No column is assigned to zscore, iqr_left or iqr_right; every column passes through")
		}
		if clnProfile {
			fmt.Fprintln(diag, table.Profile(t, 0).Markdown())
		}

		res, err := p.Run(t, plan)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := table.WriteCSV(&buf, res.Table); err != nil {
			return err
		}
		if clnOutputPath != "" {
			if err := utils.SafeWriteFile(clnOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}

		printGroups(diag, res)
		for _, w := range res.Warnings {
			fmt.Fprintf(diag, "⚠ %s\n", w)
		}
		if clnRun.dropMissing && loaded != t.Rows() {
			fmt.Fprintf(diag, "✓ Dropped %d rows with missing values before outlier removal\n", loaded-t.Rows())
		}
		fmt.Fprintf(diag, "✓ Kept %d of %d rows (run %s)\n", res.RowsAfter, res.RowsBefore, res.RunID)
		if clnOutputPath != "" {
			fmt.Fprintf(diag, "✓ Wrote cleaned table to %s\n", clnOutputPath)
		}
		if clnProfile {
			fmt.Fprintln(diag, table.Profile(res.Table, 0).Markdown())
		}

		if clnReportPath != "" {
			rep := cleanReport{Source: path, Options: opts, MissingDropped: loaded - t.Rows(), Result: *res}
			var b []byte
			if strings.EqualFold(filepath.Ext(clnReportPath), ".json") {
				b, err = utils.PrettyJSON(rep)
			} else {
				b, err = utils.PrettyYAML(rep)
			}
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(clnReportPath, b); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(diag, "✓ Wrote report to %s\n", clnReportPath)
		}
		return nil
	},
}

func printGroups(w io.Writer, res *outlier.Result) {
	if len(res.Groups) == 0 {
		return
	}
	tw := prettytable.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(prettytable.StyleLight)
	tw.AppendHeader(prettytable.Row{"Strategy", "Columns", "Rows before", "Rows after", "Removed"})
	for _, g := range res.Groups {
		tw.AppendRow(prettytable.Row{g.Strategy, strings.Join(g.Columns, ", "), g.RowsBefore, g.RowsAfter, g.Removed()})
	}
	tw.AppendFooter(prettytable.Row{"all groups", "", res.RowsBefore, res.RowsAfter, res.RowsBefore - res.RowsAfter})
	tw.Render()
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	clnInput.bind(cleanCmd)
	clnRun.bind(cleanCmd)
	cleanCmd.Flags().StringVarP(&clnOutputPath, "output", "o", "", "path for the cleaned CSV (default stdout)")
	cleanCmd.Flags().StringVar(&clnReportPath, "report", "", "write run diagnostics to this file (.yaml or .json)")
	cleanCmd.Flags().BoolVar(&clnProfile, "profile", false, "print a dataset profile before and after cleaning")
}
