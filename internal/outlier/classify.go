package outlier

import (
	"sort"
	"strings"
)

// Plan assigns columns to strategies. Columns not listed anywhere are
// passed through untouched.
type Plan struct {
	ZScore      []string `mapstructure:"zscore" yaml:"zscore,omitempty"`
	IQRLeft     []string `mapstructure:"iqr_left" yaml:"iqr_left,omitempty"`
	IQRRight    []string `mapstructure:"iqr_right" yaml:"iqr_right,omitempty"`
	PassThrough []string `mapstructure:"pass_through" yaml:"pass_through,omitempty"`
}

// PlanFromMap builds a Plan from a column -> strategy mapping. Columns are
// visited in sorted order so the resulting Plan is deterministic.
func PlanFromMap(m map[string]Strategy) Plan {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	var p Plan
	for _, n := range names {
		p.Add(n, m[n])
	}
	return p
}

// Add appends column to the list for strategy s.
func (p *Plan) Add(column string, s Strategy) {
	switch s {
	case StrategyZScore:
		p.ZScore = append(p.ZScore, column)
	case StrategyIQRLeft:
		p.IQRLeft = append(p.IQRLeft, column)
	case StrategyIQRRight:
		p.IQRRight = append(p.IQRRight, column)
	default:
		p.PassThrough = append(p.PassThrough, column)
	}
}

// Empty reports whether no column is assigned to a filtering strategy.
func (p Plan) Empty() bool {
	return len(p.ZScore) == 0 && len(p.IQRLeft) == 0 && len(p.IQRRight) == 0
}

func (p Plan) entries() []struct {
	s    Strategy
	cols []string
} {
	return []struct {
		s    Strategy
		cols []string
	}{
		{StrategyZScore, p.ZScore},
		{StrategyIQRLeft, p.IQRLeft},
		{StrategyIQRRight, p.IQRRight},
		{StrategyPassThrough, p.PassThrough},
	}
}

// Partition is the classifier's output: every numeric column appears in
// exactly one list. Lists follow the order of the numeric columns given to
// Classify.
type Partition struct {
	PassThrough []string `yaml:"pass_through" json:"pass_through"`
	ZScore      []string `yaml:"zscore" json:"zscore"`
	IQRLeft     []string `yaml:"iqr_left" json:"iqr_left"`
	IQRRight    []string `yaml:"iqr_right" json:"iqr_right"`
}

// Group is one column group with its strategy.
type Group struct {
	Strategy Strategy
	Columns  []string
}

// Groups returns the non-empty filtering groups in a fixed order:
// zscore, iqr_left, iqr_right.
func (p Partition) Groups() []Group {
	var out []Group
	for _, g := range []Group{
		{StrategyZScore, p.ZScore},
		{StrategyIQRLeft, p.IQRLeft},
		{StrategyIQRRight, p.IQRRight},
	} {
		if len(g.Columns) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// Filtered returns every column assigned to a filtering strategy.
func (p Partition) Filtered() []string {
	var out []string
	for _, g := range p.Groups() {
		out = append(out, g.Columns...)
	}
	return out
}

// Classify partitions numeric column names according to plan. A planned
// column missing from numeric, or planned twice, is a *ConfigError.
// Matching is case-insensitive; the returned names use the spelling in numeric.
func Classify(numeric []string, plan Plan) (Partition, error) {
	canon := make(map[string]string, len(numeric))
	for _, n := range numeric {
		canon[strings.ToLower(strings.TrimSpace(n))] = n
	}
	assigned := make(map[string]Strategy, len(numeric))
	for _, e := range plan.entries() {
		for _, col := range e.cols {
			name, ok := canon[strings.ToLower(strings.TrimSpace(col))]
			if !ok {
				return Partition{}, &ConfigError{Field: string(e.s), Column: col, Reason: "is not a numeric column of the table"}
			}
			if prev, dup := assigned[name]; dup {
				if prev == e.s {
					return Partition{}, &ConfigError{Field: string(e.s), Column: name, Reason: "is listed twice"}
				}
				return Partition{}, &ConfigError{Field: string(e.s), Column: name, Reason: "is already assigned to " + string(prev)}
			}
			assigned[name] = e.s
		}
	}
	var part Partition
	for _, n := range numeric {
		switch assigned[n] {
		case StrategyZScore:
			part.ZScore = append(part.ZScore, n)
		case StrategyIQRLeft:
			part.IQRLeft = append(part.IQRLeft, n)
		case StrategyIQRRight:
			part.IQRRight = append(part.IQRRight, n)
		default:
			part.PassThrough = append(part.PassThrough, n)
		}
	}
	return part, nil
}
