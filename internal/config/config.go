package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabclean/internal/outlier"
)

// Global configuration structure.
type Global struct {
	ZScoreThreshold float64 `mapstructure:"zscore_threshold" yaml:"zscore_threshold"`
	IQRMultiplier   float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`
	IQRLowerPct     float64 `mapstructure:"iqr_lower_pct" yaml:"iqr_lower_pct"`
	IQRUpperPct     float64 `mapstructure:"iqr_upper_pct" yaml:"iqr_upper_pct"`
	// Thresholds compared by `tabclean sweep`
	SweepThresholds []float64 `mapstructure:"sweep_thresholds" yaml:"sweep_thresholds"`
	Parallel        bool      `mapstructure:"parallel" yaml:"parallel"`

	// Input parsing
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter,omitempty"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet,omitempty"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Default column groups, used when no group flag is given on the command line.
	Columns outlier.Plan `mapstructure:"columns" yaml:"columns"`
}

// Options converts the numeric settings into pipeline options.
func (g *Global) Options() outlier.Options {
	return outlier.Options{
		ZScoreThreshold: g.ZScoreThreshold,
		IQRMultiplier:   g.IQRMultiplier,
		LowerPercentile: g.IQRLowerPct,
		UpperPercentile: g.IQRUpperPct,
		Parallel:        g.Parallel,
	}
}

// Dir returns ~/.tabclean.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabclean"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabclean/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABCLEAN")
	// TABCLEAN_COLUMNS_ZSCORE reaches columns.zscore.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := outlier.DefaultOptions()
	v.SetDefault("zscore_threshold", def.ZScoreThreshold)
	v.SetDefault("iqr_multiplier", def.IQRMultiplier)
	v.SetDefault("iqr_lower_pct", def.LowerPercentile)
	v.SetDefault("iqr_upper_pct", def.UpperPercentile)
	v.SetDefault("sweep_thresholds", outlier.DefaultSweepThresholds)
	v.SetDefault("parallel", def.Parallel)
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	// Nested keys must be known to viper for env lookups to apply.
	for _, k := range []string{"zscore", "iqr_left", "iqr_right", "pass_through"} {
		v.SetDefault("columns."+k, []string{})
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Options().Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
