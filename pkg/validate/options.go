package validate

import (
	"io"
	"log/slog"
)

// Defaults for Options zero values.
const (
	DefaultTypeCheckSampleRows = 100
	DefaultMaxExamplesPerField = 5
	DefaultMaxDuplicateGroups  = 5
	DefaultParallelism         = 4
)

// Options controls one validation run. The zero value is ready to use.
type Options struct {
	// Strict rejects any table column not present in the declared
	// schema.
	Strict bool

	// TypeCheckSampleRows bounds how many leading rows are inspected
	// for per-value type classification and for scalar validators.
	TypeCheckSampleRows int

	// MaxExamplesPerField caps the offending examples kept per finding
	// for scalar checks.
	MaxExamplesPerField int

	// MaxDuplicateGroups caps the duplicate groups reported by the
	// uniqueness check.
	MaxDuplicateGroups int

	// Parallelism is the number of workers for the per-field validator
	// phase. Per-field validation has no cross-field dependency; the
	// report is reassembled in declaration order regardless.
	Parallelism int

	// Logger receives debug-level stage logs; nil discards them.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.TypeCheckSampleRows <= 0 {
		o.TypeCheckSampleRows = DefaultTypeCheckSampleRows
	}
	if o.MaxExamplesPerField <= 0 {
		o.MaxExamplesPerField = DefaultMaxExamplesPerField
	}
	if o.MaxDuplicateGroups <= 0 {
		o.MaxDuplicateGroups = DefaultMaxDuplicateGroups
	}
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
