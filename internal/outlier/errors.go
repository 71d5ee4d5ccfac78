package outlier

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel every *ConfigError unwraps to.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports an invalid pipeline configuration. It is fatal: the
// pipeline returns no partial result alongside it.
type ConfigError struct {
	Field  string // option name, e.g. "zscore_threshold"
	Column string // offending column, if any
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Column != "" && e.Field != "":
		return fmt.Sprintf("configuration error: %s: column %q %s", e.Field, e.Column, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("configuration error: column %q %s", e.Column, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// WarningKind classifies non-fatal findings attached to a Result.
type WarningKind string

const (
	// WarnDegenerateColumn marks a zero-variance column skipped by the z-score filter.
	WarnDegenerateColumn WarningKind = "degenerate_column"
	// WarnEmptyResult marks a run where no rows survived filtering.
	WarnEmptyResult WarningKind = "empty_result"
)

// Warning is a non-fatal diagnostic. Warnings never abort a run.
type Warning struct {
	Kind    WarningKind `yaml:"kind" json:"kind"`
	Group   string      `yaml:"group,omitempty" json:"group,omitempty"`
	Column  string      `yaml:"column,omitempty" json:"column,omitempty"`
	Message string      `yaml:"message" json:"message"`
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s (%s): %s", w.Kind, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
