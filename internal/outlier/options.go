package outlier

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Strategy names the outlier test applied to a column group.
type Strategy string

const (
	StrategyPassThrough Strategy = "pass_through"
	StrategyZScore      Strategy = "zscore"
	StrategyIQRLeft     Strategy = "iqr_left"
	StrategyIQRRight    Strategy = "iqr_right"
)

// ParseStrategy accepts the canonical names plus a few spellings used on the
// command line ("z", "iqr-left", "none").
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass_through", "pass-through", "passthrough", "none", "":
		return StrategyPassThrough, nil
	case "zscore", "z-score", "z":
		return StrategyZScore, nil
	case "iqr_left", "iqr-left", "left":
		return StrategyIQRLeft, nil
	case "iqr_right", "iqr-right", "right":
		return StrategyIQRRight, nil
	}
	return "", &ConfigError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q (use zscore, iqr_left, iqr_right or pass_through)", s)}
}

// Tail selects the side of a distribution checked by the IQR filter.
type Tail string

const (
	TailLeft  Tail = "left"
	TailRight Tail = "right"
)

// Options are the numeric knobs of the pipeline. The defaults reproduce the
// tuning used for the student sleep dataset; they are not universal.
type Options struct {
	// ZScoreThreshold is t: rows with |z| > t in any z-score column are removed.
	ZScoreThreshold float64 `mapstructure:"zscore_threshold" yaml:"zscore_threshold" json:"zscore_threshold"`
	// IQRMultiplier is k in Q3 + k*IQR and Q1 - k*IQR.
	IQRMultiplier float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier" json:"iqr_multiplier"`
	// LowerPercentile and UpperPercentile are the Q1/Q3 cut points in [0,1].
	LowerPercentile float64 `mapstructure:"iqr_lower_pct" yaml:"iqr_lower_pct" json:"iqr_lower_pct"`
	UpperPercentile float64 `mapstructure:"iqr_upper_pct" yaml:"iqr_upper_pct" json:"iqr_upper_pct"`
	// Parallel runs group filters concurrently. Results do not depend on it.
	Parallel bool `mapstructure:"parallel" yaml:"parallel" json:"parallel"`
}

const (
	DefaultZScoreThreshold = 5.0
	DefaultIQRMultiplier   = 5.0
	DefaultLowerPercentile = 0.20
	DefaultUpperPercentile = 0.80
)

// DefaultOptions returns t=5, k=5 and 20th/80th percentile cut points.
func DefaultOptions() Options {
	return Options{
		ZScoreThreshold: DefaultZScoreThreshold,
		IQRMultiplier:   DefaultIQRMultiplier,
		LowerPercentile: DefaultLowerPercentile,
		UpperPercentile: DefaultUpperPercentile,
		Parallel:        true,
	}
}

// Validate rejects thresholds and cut points the filters cannot honor. Every
// violation is reported; the result unwraps to each *ConfigError.
func (o Options) Validate() error {
	var err error
	if !(o.ZScoreThreshold > 0) {
		err = multierr.Append(err, &ConfigError{Field: "zscore_threshold", Reason: fmt.Sprintf("must be > 0, got %v", o.ZScoreThreshold)})
	}
	if !(o.IQRMultiplier >= 0) {
		err = multierr.Append(err, &ConfigError{Field: "iqr_multiplier", Reason: fmt.Sprintf("must be >= 0, got %v", o.IQRMultiplier)})
	}
	lowerOK := o.LowerPercentile >= 0 && o.LowerPercentile <= 1
	upperOK := o.UpperPercentile >= 0 && o.UpperPercentile <= 1
	if !lowerOK {
		err = multierr.Append(err, &ConfigError{Field: "iqr_lower_pct", Reason: fmt.Sprintf("must be within [0,1], got %v", o.LowerPercentile)})
	}
	if !upperOK {
		err = multierr.Append(err, &ConfigError{Field: "iqr_upper_pct", Reason: fmt.Sprintf("must be within [0,1], got %v", o.UpperPercentile)})
	}
	if lowerOK && upperOK && o.LowerPercentile >= o.UpperPercentile {
		err = multierr.Append(err, &ConfigError{Field: "iqr_lower_pct", Reason: fmt.Sprintf("must be below iqr_upper_pct (%v >= %v)", o.LowerPercentile, o.UpperPercentile)})
	}
	return err
}
