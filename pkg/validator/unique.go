package validator

import (
	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/report"
)

// Unique validates that no value occurs more than once in the column.
// It needs whole-table semantics, so it runs against a full scan rather
// than a bounded sample. Each duplicate group reports its value and the
// ordered list of row indices where it occurs; groups are emitted in
// order of first occurrence.
type Unique struct{}

// NewUnique returns a Unique rule.
func NewUnique() Unique { return Unique{} }

// Name implements schema.Validator.
func (Unique) Name() string { return "unique" }

// ValidateFull implements FullScanValidator. maxGroups caps the number
// of duplicate groups reported.
func (Unique) ValidateFull(column string, cells []adapter.Cell, maxGroups int) *report.Finding {
	groups := make(map[string][]adapter.Cell)
	var order []string
	for _, cell := range cells {
		// Nulls are the non-null check's concern, not duplicates.
		if cell.Value == nil {
			continue
		}
		key := valueKey(cell.Value)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], cell)
	}

	c := collector{max: maxGroups}
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		rows := make([]int, len(group))
		for i, cell := range group {
			rows[i] = cell.Row
		}
		c.add(report.Example{
			Value: report.FormatValue(group[0].Value),
			Rows:  rows,
		})
	}
	return c.finding(report.KindUnique, column, "contains duplicate values")
}
