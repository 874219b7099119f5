// Package adapter defines the capability surface the validation engine
// requires from a table backend: existence and dtype queries, bounded
// value sampling, full-column scans, and logical/native type mapping.
//
// This package contains only the contract; concrete backends live in
// pkg/adapters/ subdirectories and register themselves with the registry
// in their init() functions.
package adapter

import (
	"context"

	"github.com/kitagry/pavise/pkg/schema"
)

// NativeType is one backend dtype tag plus its nullability. Backends
// where every column is inherently nullable always report Nullable true
// and defer null enforcement to the pipeline's data-level check.
type NativeType struct {
	Tag      string
	Nullable bool
}

// String returns the bare dtype tag.
func (t NativeType) String() string { return t.Tag }

// Cell is one sampled value with its 0-based position in the full table.
type Cell struct {
	Row   int
	Value any
}

// ValueSample is the bounded slice of a column's values the engine
// inspects. Cells are in original row order with absolute row indices.
// Truncated is true when the table holds more value-bearing rows than
// were inspected; TotalRows is the table's full row count.
type ValueSample struct {
	Cells     []Cell
	TotalRows int
	Truncated bool
}

// TypeMap converts between logical types and one backend's native dtype
// system. Mapping tables are fixed per backend.
type TypeMap interface {
	// ToNative maps a logical type to the backend dtype used when
	// creating columns. Returns false when the backend has no
	// representation for the logical type.
	ToNative(t schema.LogicalType, nullable bool) (NativeType, bool)

	// FromNative maps a backend dtype back to its canonical logical
	// type. Returns false for tags with no logical counterpart; the
	// pipeline reports those as type mismatches rather than failing.
	FromNative(nt NativeType) (schema.LogicalType, bool)

	// InherentNullability reports whether every column of this backend
	// is nullable by construction. When true, a non-nullable declared
	// field maps to the same native dtype as a nullable one and null
	// presence is enforced against the data instead of the dtype.
	InherentNullability() bool
}

// Table is an eager, fully materialized table.
type Table interface {
	// Columns returns the table's column names in native order.
	Columns() []string

	// DType returns the native dtype of column, or ErrNoSuchColumn.
	DType(column string) (NativeType, error)

	// Sample returns at most maxRows values from the start of the
	// table, in original row order, with Truncated set correctly.
	Sample(ctx context.Context, column string, maxRows int) (ValueSample, error)

	// FullScan returns every (row, value) pair of the column. This is a
	// distinct query path from Sample because eager and lazy backends
	// implement full scans very differently; it exists for checks with
	// whole-table semantics such as uniqueness.
	FullScan(ctx context.Context, column string) ([]Cell, error)

	// RowCount returns the table's row count. May be expensive; callers
	// avoid it unless a check needs full-table semantics.
	RowCount(ctx context.Context) (int, error)

	// ExtraColumns returns the table's columns not present in declared,
	// in the table's native column order.
	ExtraColumns(declared map[string]struct{}) []string

	// TypeMap returns this backend's type mapping.
	TypeMap() TypeMap
}

// ColumnMeta is the schema-level description of one column of a deferred
// table, obtainable without materializing data.
type ColumnMeta struct {
	Name string
	Type NativeType
}

// LazyTable is a deferred table. Schema must run in time proportional to
// the schema, not the row count; Collect triggers the computation and is
// the one potentially long-running call.
type LazyTable interface {
	Schema(ctx context.Context) ([]ColumnMeta, error)
	Collect(ctx context.Context) (Table, error)
	TypeMap() TypeMap
}

// ValueTyper is implemented by duck-typed backends whose columns can hold
// values of mixed runtime types. For such columns the pipeline classifies
// sampled values individually instead of trusting a schema-level dtype.
type ValueTyper interface {
	// ObjectType returns the native dtype marking a duck-typed column.
	ObjectType() NativeType

	// ValueTag classifies one value's runtime type for diagnostics.
	ValueTag(v any) string

	// ValueIs reports whether a single value satisfies the logical type.
	ValueIs(v any, t schema.LogicalType) bool
}
