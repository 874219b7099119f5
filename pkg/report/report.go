// Package report defines the structured diagnostics produced by a
// validation run: findings with bounded examples, the ordered report they
// aggregate into, and deterministic text rendering.
package report

import (
	"fmt"
	"strconv"
)

// Kind classifies a finding.
type Kind int

// Finding kinds, ordered roughly by pipeline stage.
const (
	// KindMissingColumns reports declared columns absent from the table.
	KindMissingColumns Kind = iota
	// KindExtraColumns reports undeclared table columns in strict mode.
	KindExtraColumns
	// KindTypeMismatch reports a declared/actual dtype disagreement.
	KindTypeMismatch
	// KindNullability reports a declared non-nullable field backed by a
	// nullable-typed column.
	KindNullability
	// KindNulls reports null values in a non-nullable field.
	KindNulls
	// KindRange reports values outside an inclusive numeric range.
	KindRange
	// KindUnique reports duplicate value groups.
	KindUnique
	// KindIn reports values outside an allowed set.
	KindIn
	// KindRegex reports values not fully matching a pattern.
	KindRegex
	// KindMinLen reports values shorter than a bound.
	KindMinLen
	// KindMaxLen reports values longer than a bound.
	KindMaxLen
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindMissingColumns:
		return "missing-columns"
	case KindExtraColumns:
		return "extra-columns"
	case KindTypeMismatch:
		return "type-mismatch"
	case KindNullability:
		return "nullability"
	case KindNulls:
		return "nulls"
	case KindRange:
		return "range"
	case KindUnique:
		return "unique"
	case KindIn:
		return "in"
	case KindRegex:
		return "regex"
	case KindMinLen:
		return "min-length"
	case KindMaxLen:
		return "max-length"
	default:
		return "unknown"
	}
}

// Example renders one offending occurrence. For scalar findings Row and
// Value are set, with ActualType filled in for type mismatches on
// duck-typed columns. For duplicate groups Value and Rows are set.
type Example struct {
	Row        int
	Value      string
	ActualType string
	Rows       []int
}

// Finding is one structured diagnostic for a single column and check.
// Examples is bounded by the validation options; MoreCount records how
// many further occurrences were suppressed.
type Finding struct {
	Kind      Kind
	Column    string
	Message   string
	Examples  []Example
	MoreCount int
}

// Report is the ordered outcome of one validation run. An empty report
// means the table is valid; any finding means it is not.
type Report struct {
	Findings []Finding
}

// Empty reports whether the run produced no findings.
func (r Report) Empty() bool { return len(r.Findings) == 0 }

// Add appends a finding, ignoring nil.
func (r *Report) Add(f *Finding) {
	if f != nil {
		r.Findings = append(r.Findings, *f)
	}
}

// ValidationError is the aggregate "data is invalid" outcome. It wraps
// the full report; the error text is the rendered report.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	return "validation failed\n" + Render(e.Report)
}

// FormatValue renders a sampled value for diagnostics. Strings are
// quoted so empty and whitespace-only values stay visible; nil renders
// as "null".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
