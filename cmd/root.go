package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/tabclean/internal/config"
	"github.com/KaramelBytes/tabclean/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tabclean",
	Short: "tabclean: per-column outlier removal for tabular datasets",
	Long: `tabclean removes outliers from CSV/TSV/XLSX tables. Numeric columns are
assigned to a strategy (z-score, IQR left tail, IQR right tail, or pass-through),
each group is filtered independently, and only rows that survive every filter
are kept.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabclean/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log encoding: console | json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal here; commands that need config call requireConfig and fail there.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
}

// requireConfig returns the loaded configuration, retrying the load so the
// underlying error surfaces to the caller.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// newLogger builds the diagnostics logger. Logs always go to stderr.
func newLogger(cmd *cobra.Command, c *cfgpkg.Global) (*zap.Logger, error) {
	lc := logging.Config{Level: c.LogLevel, Format: c.LogFormat}
	if debug {
		lc.Level = "debug"
	}
	if logFormat != "" {
		lc.Format = logFormat
	}
	return logging.New(lc, cmd.ErrOrStderr())
}
