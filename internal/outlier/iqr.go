package outlier

import (
	"fmt"

	"github.com/KaramelBytes/tabclean/internal/stats"
	"github.com/KaramelBytes/tabclean/internal/table"
)

// IQRConfig parameterizes IQRFilter.
type IQRConfig struct {
	Tail       Tail
	Multiplier float64 // k
	LowerPct   float64 // Q1 cut point, 0..1
	UpperPct   float64 // Q3 cut point, 0..1
}

// IQRBound computes the accepted range for one column.
//
//	right tail: [min, Q3 + k*IQR]
//	left tail:  [Q1 - k*IQR, max]
//
// ok is false when the column holds no values.
func IQRBound(vals []float64, cfg IQRConfig) (lower, upper float64, ok bool) {
	sorted := stats.Sorted(vals)
	if len(sorted) == 0 {
		return 0, 0, false
	}
	q1 := stats.Quantile(sorted, cfg.LowerPct)
	q3 := stats.Quantile(sorted, cfg.UpperPct)
	iqr := q3 - q1
	switch cfg.Tail {
	case TailLeft:
		return q1 - cfg.Multiplier*iqr, sorted[len(sorted)-1], true
	default:
		return sorted[0], q3 + cfg.Multiplier*iqr, true
	}
}

// IQRFilter removes rows whose value in any column of t falls strictly
// outside that column's IQRBound. The row identifier, if present, is preserved.
func IQRFilter(t *table.Table, cfg IQRConfig) (*table.Table, []Bound, error) {
	if cfg.Tail != TailLeft && cfg.Tail != TailRight {
		return nil, nil, &ConfigError{Field: "tail", Reason: fmt.Sprintf("must be %q or %q, got %q", TailLeft, TailRight, cfg.Tail)}
	}
	field := string(StrategyIQRRight)
	if cfg.Tail == TailLeft {
		field = string(StrategyIQRLeft)
	}
	if !(cfg.Multiplier >= 0) {
		return nil, nil, &ConfigError{Field: "iqr_multiplier", Reason: fmt.Sprintf("must be >= 0, got %v", cfg.Multiplier)}
	}
	if !(cfg.LowerPct >= 0 && cfg.UpperPct <= 1 && cfg.LowerPct < cfg.UpperPct) {
		return nil, nil, &ConfigError{Field: "iqr_lower_pct", Reason: fmt.Sprintf("cut points must satisfy 0 <= lower < upper <= 1, got %v/%v", cfg.LowerPct, cfg.UpperPct)}
	}
	keep := allTrue(t.Rows())
	bounds := make([]Bound, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Kind != table.KindNumeric {
			return nil, nil, &ConfigError{Field: field, Column: c.Name, Reason: "is not numeric"}
		}
		lo, hi, ok := IQRBound(c.Nums, cfg)
		if !ok {
			bounds = append(bounds, Bound{Column: c.Name, Degenerate: true})
			continue
		}
		bounds = append(bounds, Bound{Column: c.Name, Lower: lo, Upper: hi})
		for i, x := range c.Nums {
			if x < lo || x > hi {
				keep[i] = false
			}
		}
	}
	return t.FilterRows(keep), bounds, nil
}
