// Package memory provides an in-memory columnar backend. It is the
// reference eager backend for tests and small datasets: every column is
// inherently nullable, and columns of mixed runtime types are supported
// through the object dtype with per-value classification.
package memory

import (
	"context"
	"fmt"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

// Series is one named column. Type is a native dtype tag; leave it empty
// to infer from the values (mixed types infer as object). A nil value is
// a null.
type Series struct {
	Name   string
	Type   string
	Values []any
}

// Table is an eager in-memory table. Immutable after construction.
type Table struct {
	series []Series
	index  map[string]int
	rows   int
}

// New builds a table from columns. All series must have equal length;
// column names must be unique.
func New(series ...Series) (*Table, error) {
	t := &Table{
		series: make([]Series, len(series)),
		index:  make(map[string]int, len(series)),
	}
	copy(t.series, series)
	for i, s := range t.series {
		if _, ok := t.index[s.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", s.Name)
		}
		t.index[s.Name] = i
		if i == 0 {
			t.rows = len(s.Values)
		} else if len(s.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", s.Name, len(s.Values), t.rows)
		}
		if s.Type == "" {
			t.series[i].Type = inferTag(s.Values)
		}
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and
// literals.
func MustNew(series ...Series) *Table {
	t, err := New(series...)
	if err != nil {
		panic(err)
	}
	return t
}

// NewEmpty builds a zero-row table whose columns exactly match the
// declared fields and their mapped dtypes. Not-required fields are
// included.
func NewEmpty(s *schema.Schema) *Table {
	series := make([]Series, 0, s.Len())
	for _, f := range s.Fields() {
		nt, ok := TypeMap().ToNative(f.Type, f.Nullable)
		tag := TagObject
		if ok {
			tag = nt.Tag
		}
		series = append(series, Series{Name: f.Name, Type: tag})
	}
	return MustNew(series...)
}

func inferTag(values []any) string {
	tag := ""
	for _, v := range values {
		if v == nil {
			continue
		}
		vt := seriesTag(v)
		if tag == "" {
			tag = vt
		} else if tag != vt {
			return TagObject
		}
	}
	if tag == "" {
		return TagObject
	}
	return tag
}

// Columns returns the column names in native order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.series))
	for i, s := range t.series {
		names[i] = s.Name
	}
	return names
}

// DType returns the native dtype of column. Memory columns are always
// nullable.
func (t *Table) DType(column string) (adapter.NativeType, error) {
	i, ok := t.index[column]
	if !ok {
		return adapter.NativeType{}, fmt.Errorf("column %q: %w", column, adapter.ErrNoSuchColumn)
	}
	return adapter.NativeType{Tag: t.series[i].Type, Nullable: true}, nil
}

// Sample returns the first maxRows values of column.
func (t *Table) Sample(_ context.Context, column string, maxRows int) (adapter.ValueSample, error) {
	i, ok := t.index[column]
	if !ok {
		return adapter.ValueSample{}, fmt.Errorf("column %q: %w", column, adapter.ErrNoSuchColumn)
	}
	values := t.series[i].Values
	n := min(maxRows, len(values))
	cells := make([]adapter.Cell, 0, n)
	for row := 0; row < n; row++ {
		cells = append(cells, adapter.Cell{Row: row, Value: values[row]})
	}
	return adapter.ValueSample{
		Cells:     cells,
		TotalRows: len(values),
		Truncated: len(values) > n,
	}, nil
}

// FullScan returns every value of column.
func (t *Table) FullScan(_ context.Context, column string) ([]adapter.Cell, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", column, adapter.ErrNoSuchColumn)
	}
	values := t.series[i].Values
	cells := make([]adapter.Cell, len(values))
	for row, v := range values {
		cells[row] = adapter.Cell{Row: row, Value: v}
	}
	return cells, nil
}

// RowCount returns the table's row count.
func (t *Table) RowCount(context.Context) (int, error) { return t.rows, nil }

// ExtraColumns returns columns not in declared, in native order.
func (t *Table) ExtraColumns(declared map[string]struct{}) []string {
	var extras []string
	for _, s := range t.series {
		if _, ok := declared[s.Name]; !ok {
			extras = append(extras, s.Name)
		}
	}
	return extras
}

// TypeMap returns the memory backend's type mapping.
func (t *Table) TypeMap() adapter.TypeMap { return TypeMap() }

// ObjectType implements adapter.ValueTyper.
func (t *Table) ObjectType() adapter.NativeType {
	return adapter.NativeType{Tag: TagObject, Nullable: true}
}

// ValueTag implements adapter.ValueTyper.
func (t *Table) ValueTag(v any) string { return valueTag(v) }

// ValueIs implements adapter.ValueTyper.
func (t *Table) ValueIs(v any, lt schema.LogicalType) bool { return valueIs(v, lt) }
