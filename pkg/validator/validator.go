// Package validator implements the built-in value validation rules.
// Rules are stateless and pure: each consumes a bounded value sample (or,
// for Unique, a full column scan) and returns zero or one finding, so a
// single rule instance is safely reused across columns and tables.
//
// The set is closed; all built-ins are enumerated here rather than
// behind an open plugin registry.
package validator

import (
	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/report"
)

// SampleValidator checks a bounded value sample. Implemented by every
// rule except Unique. maxExamples caps the finding's example list; the
// overflow is recorded in the finding's MoreCount.
type SampleValidator interface {
	Name() string
	Validate(column string, s adapter.ValueSample, maxExamples int) *report.Finding
}

// FullScanValidator checks a full column scan. Implemented by rules with
// whole-table semantics; the pipeline fetches the scan through the
// adapter's dedicated query path.
type FullScanValidator interface {
	Name() string
	ValidateFull(column string, cells []adapter.Cell, maxGroups int) *report.Finding
}

// collector accumulates examples up to a cap, counting the overflow.
type collector struct {
	max      int
	examples []report.Example
	more     int
}

func (c *collector) add(ex report.Example) {
	if len(c.examples) < c.max {
		c.examples = append(c.examples, ex)
		return
	}
	c.more++
}

func (c *collector) empty() bool {
	return len(c.examples) == 0 && c.more == 0
}

func (c *collector) finding(kind report.Kind, column, message string) *report.Finding {
	if c.empty() {
		return nil
	}
	return &report.Finding{
		Kind:      kind,
		Column:    column,
		Message:   message,
		Examples:  c.examples,
		MoreCount: c.more,
	}
}
