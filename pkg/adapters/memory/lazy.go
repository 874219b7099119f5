package memory

import (
	"context"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

// Lazy is a deferred in-memory table: column metadata is known up front,
// data is produced only when collected.
type Lazy struct {
	meta    []adapter.ColumnMeta
	collect func(ctx context.Context) (*Table, error)
}

// Defer wraps an existing table as a lazy one. Schema queries answer
// from the table's metadata; Collect returns the table itself.
func Defer(t *Table) *Lazy {
	return DeferFunc(metaOf(t), func(context.Context) (*Table, error) {
		return t, nil
	})
}

// DeferFunc builds a lazy table from declared column metadata and a
// deferred computation. fn runs once per Collect call.
func DeferFunc(meta []adapter.ColumnMeta, fn func(ctx context.Context) (*Table, error)) *Lazy {
	return &Lazy{meta: meta, collect: fn}
}

// NewEmptyLazy builds a lazy zero-row table whose columns exactly match
// the declared fields.
func NewEmptyLazy(s *schema.Schema) *Lazy {
	return Defer(NewEmpty(s))
}

// Schema returns the deferred table's column metadata without
// materializing any data.
func (l *Lazy) Schema(context.Context) ([]adapter.ColumnMeta, error) {
	return l.meta, nil
}

// Collect runs the deferred computation and returns the eager table.
func (l *Lazy) Collect(ctx context.Context) (adapter.Table, error) {
	return l.collect(ctx)
}

// TypeMap returns the memory backend's type mapping.
func (l *Lazy) TypeMap() adapter.TypeMap { return TypeMap() }

// ObjectType implements adapter.ValueTyper. Object columns keep their
// duck-typed classification deferred until the table is collected.
func (l *Lazy) ObjectType() adapter.NativeType {
	return adapter.NativeType{Tag: TagObject, Nullable: true}
}

// ValueTag implements adapter.ValueTyper.
func (l *Lazy) ValueTag(v any) string { return valueTag(v) }

// ValueIs implements adapter.ValueTyper.
func (l *Lazy) ValueIs(v any, lt schema.LogicalType) bool { return valueIs(v, lt) }

func metaOf(t *Table) []adapter.ColumnMeta {
	meta := make([]adapter.ColumnMeta, len(t.series))
	for i, s := range t.series {
		meta[i] = adapter.ColumnMeta{
			Name: s.Name,
			Type: adapter.NativeType{Tag: s.Type, Nullable: true},
		}
	}
	return meta
}
