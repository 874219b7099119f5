package report

import (
	"fmt"
	"strings"
)

// Render produces the canonical text form of a report: one paragraph per
// finding, a header line followed by indented example lines. The output
// is a pure function of the report, stable across runs, and is part of
// the library's contract (golden-output tests rely on it).
func Render(r Report) string {
	var b strings.Builder
	for i, f := range r.Findings {
		if i > 0 {
			b.WriteByte('\n')
		}
		renderFinding(&b, f)
	}
	return b.String()
}

func renderFinding(b *strings.Builder, f Finding) {
	if f.Column != "" {
		fmt.Fprintf(b, "Column '%s': %s", f.Column, f.Message)
	} else {
		b.WriteString(f.Message)
	}
	if len(f.Examples) > 0 {
		total := len(f.Examples) + f.MoreCount
		fmt.Fprintf(b, " (showing first %d of %d)", len(f.Examples), total)
	}
	for _, ex := range f.Examples {
		b.WriteByte('\n')
		renderExample(b, ex)
	}
}

func renderExample(b *strings.Builder, ex Example) {
	if len(ex.Rows) > 0 {
		fmt.Fprintf(b, "  value %s at rows %s", ex.Value, formatRows(ex.Rows))
		return
	}
	fmt.Fprintf(b, "  row %d: %s", ex.Row, ex.Value)
	if ex.ActualType != "" {
		fmt.Fprintf(b, " (%s)", ex.ActualType)
	}
}

func formatRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%d", r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatNames renders a column name list as it appears in structural
// findings, preserving the given order.
func FormatNames(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
