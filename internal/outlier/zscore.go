package outlier

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/tabclean/internal/stats"
	"github.com/KaramelBytes/tabclean/internal/table"
)

// Bound is the accepted value range a filter derived for one column.
type Bound struct {
	Column string  `yaml:"column" json:"column"`
	Lower  float64 `yaml:"lower" json:"lower"`
	Upper  float64 `yaml:"upper" json:"upper"`
	// Degenerate is set when the column had zero variance (z-score) or no
	// values, and was therefore not used to remove rows.
	Degenerate bool `yaml:"degenerate,omitempty" json:"degenerate,omitempty"`
}

// ZScoreFilter removes rows whose standardized value |x-mean|/std exceeds
// threshold in any column of t. Mean and the population standard deviation
// (denominator N) are computed over t's rows. Zero-variance columns never
// remove a row and are reported with Degenerate set. NaN cells never remove
// a row. The row identifier, if present, is preserved.
func ZScoreFilter(t *table.Table, threshold float64) (*table.Table, []Bound, error) {
	if !(threshold > 0) {
		return nil, nil, &ConfigError{Field: "zscore_threshold", Reason: fmt.Sprintf("must be > 0, got %v", threshold)}
	}
	keep := allTrue(t.Rows())
	bounds := make([]Bound, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Kind != table.KindNumeric {
			return nil, nil, &ConfigError{Field: string(StrategyZScore), Column: c.Name, Reason: "is not numeric"}
		}
		mean, std, n := stats.PopMeanStd(c.Nums)
		if n == 0 || std == 0 || math.IsNaN(std) {
			m := stats.Describe(c.Nums)
			bounds = append(bounds, Bound{Column: c.Name, Lower: m.Min, Upper: m.Max, Degenerate: true})
			continue
		}
		bounds = append(bounds, Bound{Column: c.Name, Lower: mean - threshold*std, Upper: mean + threshold*std})
		for i, x := range c.Nums {
			if math.Abs((x-mean)/std) > threshold {
				keep[i] = false
			}
		}
	}
	return t.FilterRows(keep), bounds, nil
}

func allTrue(n int) []bool {
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	return keep
}
