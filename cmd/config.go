package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabclean/internal/config"
	"github.com/KaramelBytes/tabclean/internal/logging"
	"github.com/KaramelBytes/tabclean/internal/outlier"
	"github.com/KaramelBytes/tabclean/internal/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabclean configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		b, err := utils.PrettyYAML(c)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Keys: zscore_threshold, iqr_multiplier, iqr_lower_pct, iqr_upper_pct,
sweep_thresholds, parallel, delimiter, sheet, log_level, log_format,
columns.zscore, columns.iqr_left, columns.iqr_right. List values are
comma-separated; an empty value clears a list.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := applySetting(c, key, val); err != nil {
			return err
		}
		if err := c.Options().Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", key)
		return nil
	},
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	parseFloat := func() (float64, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	var err error
	switch strings.ToLower(key) {
	case "zscore_threshold":
		c.ZScoreThreshold, err = parseFloat()
	case "iqr_multiplier":
		c.IQRMultiplier, err = parseFloat()
	case "iqr_lower_pct":
		c.IQRLowerPct, err = parseFloat()
	case "iqr_upper_pct":
		c.IQRUpperPct, err = parseFloat()
	case "sweep_thresholds":
		var thr []float64
		for _, s := range splitList([]string{val}) {
			f, perr := strconv.ParseFloat(s, 64)
			if perr != nil || !(f > 0) {
				return fmt.Errorf("invalid threshold in sweep_thresholds: %v", s)
			}
			thr = append(thr, f)
		}
		c.SweepThresholds = thr
	case "parallel":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for parallel: %v", val)
		}
		c.Parallel = b
	case "delimiter":
		if _, err := (&inputFlags{delimiter: val}).options(""); err != nil {
			return err
		}
		c.Delimiter = val
	case "sheet":
		c.Sheet = val
	case "log_level":
		if _, err := logging.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		if err := (logging.Config{Format: val}).Validate(); err != nil {
			return err
		}
		c.LogFormat = strings.ToLower(val)
	case "columns.zscore":
		c.Columns.ZScore = splitList([]string{val})
	case "columns.iqr_left":
		c.Columns.IQRLeft = splitList([]string{val})
	case "columns.iqr_right":
		c.Columns.IQRRight = splitList([]string{val})
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return err
	}
	// Catch a column placed in two groups before it reaches a run.
	var named []string
	for _, cols := range [][]string{c.Columns.ZScore, c.Columns.IQRLeft, c.Columns.IQRRight, c.Columns.PassThrough} {
		named = append(named, cols...)
	}
	_, err = outlier.Classify(named, c.Columns)
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
