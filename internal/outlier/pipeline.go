package outlier

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tabclean/internal/table"
)

// GroupReport is the per-group diagnostic of one run.
type GroupReport struct {
	Strategy   Strategy `yaml:"strategy" json:"strategy"`
	Columns    []string `yaml:"columns" json:"columns"`
	RowsBefore int      `yaml:"rows_before" json:"rows_before"`
	RowsAfter  int      `yaml:"rows_after" json:"rows_after"`
	Bounds     []Bound  `yaml:"bounds" json:"bounds"`
}

// Removed returns how many rows the group's filter rejected on its own.
func (g GroupReport) Removed() int { return g.RowsBefore - g.RowsAfter }

// Result is the cleaned table plus the diagnostics side channel.
type Result struct {
	RunID      string        `yaml:"run_id" json:"run_id"`
	Table      *table.Table  `yaml:"-" json:"-"`
	Partition  Partition     `yaml:"partition" json:"partition"`
	RowsBefore int           `yaml:"rows_before" json:"rows_before"`
	RowsAfter  int           `yaml:"rows_after" json:"rows_after"`
	Groups     []GroupReport `yaml:"groups" json:"groups"`
	Warnings   []Warning     `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// Pipeline runs the classify -> filter per group -> recombine flow. A
// Pipeline holds only configuration and may be shared between goroutines.
type Pipeline struct {
	opts   Options
	logger *zap.Logger
}

// New validates opts and returns a Pipeline. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{opts: opts, logger: logger}, nil
}

// Options returns the pipeline's configuration.
func (p *Pipeline) Options() Options { return p.opts }

type groupOutcome struct {
	report   GroupReport
	filtered *table.Table
	warnings []Warning
	err      error
}

// Run cleans t according to plan. Row identifiers are assigned here unless t
// already carries them, so callers should finish any row-dropping (such as
// DropMissing) before calling Run. The returned table has the input's
// columns in the input's order, rows in original order, and no identifier.
func (p *Pipeline) Run(t *table.Table, plan Plan) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("run: nil table")
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	resolved, err := resolvePlan(t, plan)
	if err != nil {
		return nil, err
	}
	part, err := Classify(t.NumericNames(), resolved)
	if err != nil {
		return nil, err
	}

	withIDs := t
	if t.IDs == nil {
		withIDs = t.WithRowIDs()
	}
	res := &Result{
		RunID:      uuid.NewString(),
		Partition:  part,
		RowsBefore: withIDs.Rows(),
	}
	log := p.logger.With(zap.String("run_id", res.RunID), zap.String("table", t.Name))

	groups := part.Groups()
	filter := func(g *Group) groupOutcome { return p.filterGroup(withIDs, *g) }
	var outcomes []groupOutcome
	if p.opts.Parallel && len(groups) > 1 {
		outcomes = iter.Map(groups, filter)
	} else {
		outcomes = make([]groupOutcome, len(groups))
		for i := range groups {
			outcomes[i] = filter(&groups[i])
		}
	}

	filtered := make([]*table.Table, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		filtered = append(filtered, o.filtered)
		res.Groups = append(res.Groups, o.report)
		res.Warnings = append(res.Warnings, o.warnings...)
		log.Info("filtered column group",
			zap.String("strategy", string(o.report.Strategy)),
			zap.Strings("columns", o.report.Columns),
			zap.Int("rows_before", o.report.RowsBefore),
			zap.Int("rows_after", o.report.RowsAfter))
	}

	joined, err := Recombine(withIDs.Without(part.Filtered()...), filtered...)
	if err != nil {
		return nil, err
	}
	ordered, err := joined.Project(t.Names()...)
	if err != nil {
		return nil, fmt.Errorf("run: reorder columns: %w", err)
	}
	res.Table = ordered.WithoutRowIDs()
	res.RowsAfter = res.Table.Rows()

	if res.RowsAfter == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnEmptyResult,
			Message: fmt.Sprintf("no rows survived filtering (%d rows in); thresholds may be too aggressive", res.RowsBefore),
		})
	}
	for _, w := range res.Warnings {
		log.Warn(w.Message, zap.String("kind", string(w.Kind)), zap.String("group", w.Group), zap.String("column", w.Column))
	}
	log.Info("outlier removal complete",
		zap.Int("rows_before", res.RowsBefore),
		zap.Int("rows_after", res.RowsAfter),
		zap.Int("groups", len(res.Groups)))
	return res, nil
}

func (p *Pipeline) filterGroup(t *table.Table, g Group) groupOutcome {
	sub, err := t.Project(g.Columns...)
	if err != nil {
		return groupOutcome{err: err}
	}
	var (
		out    *table.Table
		bounds []Bound
	)
	switch g.Strategy {
	case StrategyZScore:
		out, bounds, err = ZScoreFilter(sub, p.opts.ZScoreThreshold)
	case StrategyIQRLeft, StrategyIQRRight:
		tail := TailRight
		if g.Strategy == StrategyIQRLeft {
			tail = TailLeft
		}
		out, bounds, err = IQRFilter(sub, IQRConfig{
			Tail:       tail,
			Multiplier: p.opts.IQRMultiplier,
			LowerPct:   p.opts.LowerPercentile,
			UpperPct:   p.opts.UpperPercentile,
		})
	default:
		err = &ConfigError{Field: "strategy", Reason: fmt.Sprintf("cannot filter with %q", g.Strategy)}
	}
	if err != nil {
		return groupOutcome{err: err}
	}
	o := groupOutcome{
		filtered: out,
		report: GroupReport{
			Strategy:   g.Strategy,
			Columns:    g.Columns,
			RowsBefore: sub.Rows(),
			RowsAfter:  out.Rows(),
			Bounds:     bounds,
		},
	}
	for _, b := range bounds {
		if !b.Degenerate {
			continue
		}
		msg := fmt.Sprintf("column %s has no values; skipped", b.Column)
		if g.Strategy == StrategyZScore {
			msg = fmt.Sprintf("column %s has zero variance; z-score check skipped", b.Column)
		}
		o.warnings = append(o.warnings, Warning{Kind: WarnDegenerateColumn, Group: string(g.Strategy), Column: b.Column, Message: msg})
	}
	return o
}

// resolvePlan maps every planned name to the table's canonical column name,
// so plans may use original headers such as "Sleep Duration (hours)".
// Categorical columns are rejected here with a clearer message than Classify gives.
func resolvePlan(t *table.Table, plan Plan) (Plan, error) {
	var out Plan
	for _, e := range plan.entries() {
		for _, name := range e.cols {
			c := t.Column(name)
			if c == nil {
				return Plan{}, &ConfigError{Field: string(e.s), Column: name, Reason: "is not present in the table"}
			}
			if c.Kind != table.KindNumeric {
				return Plan{}, &ConfigError{Field: string(e.s), Column: c.Name, Reason: "is not numeric"}
			}
			out.Add(c.Name, e.s)
		}
	}
	return out, nil
}
