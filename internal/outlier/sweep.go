package outlier

import (
	"fmt"

	"github.com/KaramelBytes/tabclean/internal/table"
)

// DefaultSweepThresholds are the global z-score thresholds compared by Sweep.
var DefaultSweepThresholds = []float64{3, 5, 8}

// SweepPoint reports how many rows one global threshold would keep.
type SweepPoint struct {
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	RowsBefore int     `yaml:"rows_before" json:"rows_before"`
	RowsAfter  int     `yaml:"rows_after" json:"rows_after"`
}

// Retained returns the fraction of rows kept, or 0 for an empty table.
func (s SweepPoint) Retained() float64 {
	if s.RowsBefore == 0 {
		return 0
	}
	return float64(s.RowsAfter) / float64(s.RowsBefore)
}

// Sweep applies one z-score threshold uniformly to columns (all numeric
// columns when empty) for each candidate threshold and reports the row counts.
// It is a read-only diagnostic: t is not modified and nothing is returned
// besides the counts.
func Sweep(t *table.Table, columns []string, thresholds []float64) ([]SweepPoint, error) {
	if len(thresholds) == 0 {
		thresholds = DefaultSweepThresholds
	}
	if len(columns) == 0 {
		columns = t.NumericNames()
	}
	sub, err := t.Project(columns...)
	if err != nil {
		return nil, &ConfigError{Field: "columns", Reason: err.Error()}
	}
	out := make([]SweepPoint, 0, len(thresholds))
	for _, thr := range thresholds {
		kept, _, err := ZScoreFilter(sub, thr)
		if err != nil {
			return nil, fmt.Errorf("sweep at %v: %w", thr, err)
		}
		out = append(out, SweepPoint{Threshold: thr, RowsBefore: sub.Rows(), RowsAfter: kept.Rows()})
	}
	return out, nil
}
