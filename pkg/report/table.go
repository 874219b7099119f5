package report

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable writes a human-oriented table view of the report. Unlike
// Render, the exact layout is not a contract; use Render for golden
// comparisons and machine consumption.
func RenderTable(w io.Writer, r Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Check", "Message", "Occurrences"})

	for _, f := range r.Findings {
		col := f.Column
		if col == "" {
			col = "-"
		}
		t.AppendRow(table.Row{col, f.Kind.String(), f.Message, len(f.Examples) + f.MoreCount})
	}
	t.Render()
}

// RenderTableString is RenderTable into a string.
func RenderTableString(r Report) string {
	var b strings.Builder
	RenderTable(&b, r)
	return b.String()
}
