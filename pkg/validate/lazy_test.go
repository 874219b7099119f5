package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/adapters/memory"
	"github.com/kitagry/pavise/pkg/report"
	"github.com/kitagry/pavise/pkg/schema"
	"github.com/kitagry/pavise/pkg/validator"
)

func TestNewLazyValidSchema(t *testing.T) {
	s := schema.MustBuild(schema.Field{Name: "id", Type: schema.Int})
	lt := memory.Defer(memory.MustNew(memory.Series{Name: "id", Values: []any{int64(1)}}))

	lazy, err := NewLazy(context.Background(), s, lt, testOpts(t))
	require.NoError(t, err)
	assert.Equal(t, StateSchemaValidated, lazy.State())
}

func TestNewLazyStructuralFailures(t *testing.T) {
	t.Run("missing column fails at construction", func(t *testing.T) {
		s := schema.MustBuild(schema.Field{Name: "age", Type: schema.Int})
		lt := memory.Defer(memory.MustNew(memory.Series{Name: "id", Values: []any{int64(1)}}))

		_, err := NewLazy(context.Background(), s, lt, testOpts(t))
		rep := requireReport(t, err)
		require.Len(t, rep.Findings, 1)
		assert.Equal(t, report.KindMissingColumns, rep.Findings[0].Kind)
	})

	t.Run("type mismatch fails at construction", func(t *testing.T) {
		s := schema.MustBuild(schema.Field{Name: "id", Type: schema.Int, Nullable: true})
		lt := memory.Defer(memory.MustNew(memory.Series{Name: "id", Values: []any{"a", "b"}}))

		_, err := NewLazy(context.Background(), s, lt, testOpts(t))
		rep := requireReport(t, err)
		require.Len(t, rep.Findings, 1)
		assert.Equal(t, report.KindTypeMismatch, rep.Findings[0].Kind)
		assert.Equal(t, "expected int, got str", rep.Findings[0].Message)
	})

	t.Run("strict extras fail at construction", func(t *testing.T) {
		s := schema.MustBuild(schema.Field{Name: "id", Type: schema.Int})
		lt := memory.Defer(memory.MustNew(
			memory.Series{Name: "id", Values: []any{int64(1)}},
			memory.Series{Name: "tmp", Values: []any{int64(0)}},
		))

		opts := testOpts(t)
		opts.Strict = true
		_, err := NewLazy(context.Background(), s, lt, opts)
		rep := requireReport(t, err)
		require.Len(t, rep.Findings, 1)
		assert.Equal(t, report.KindExtraColumns, rep.Findings[0].Kind)
		assert.Equal(t, "unexpected columns: [tmp]", rep.Findings[0].Message)
	})
}

func TestLazyValueChecksDeferredToCollect(t *testing.T) {
	s := schema.MustBuild(schema.Field{Name: "id", Type: schema.Int,
		Validators: []schema.Validator{validator.NewUnique()}})

	materialized := 0
	lt := memory.DeferFunc(
		[]adapter.ColumnMeta{{Name: "id", Type: adapter.NativeType{Tag: memory.TagInt, Nullable: true}}},
		func(context.Context) (*memory.Table, error) {
			materialized++
			return memory.MustNew(memory.Series{Name: "id", Values: []any{int64(1), int64(1)}}), nil
		},
	)

	lazy, err := NewLazy(context.Background(), s, lt, testOpts(t))
	require.NoError(t, err)
	assert.Equal(t, 0, materialized, "construction must not materialize data")

	_, err = lazy.Collect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, materialized)
	assert.Equal(t, StateCollectedInvalid, lazy.State())

	rep := requireReport(t, err)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, report.KindUnique, rep.Findings[0].Kind)
}

func TestLazyCollectValid(t *testing.T) {
	s := schema.MustBuild(schema.Field{Name: "id", Type: schema.Int,
		Validators: []schema.Validator{validator.NewUnique()}})
	src := memory.MustNew(memory.Series{Name: "id", Values: []any{int64(1), int64(2)}})

	lazy, err := NewLazy(context.Background(), s, memory.Defer(src), testOpts(t))
	require.NoError(t, err)

	tbl, err := lazy.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, adapter.Table(src), tbl)
	assert.Equal(t, StateCollectedValid, lazy.State())
}

func TestLazyCollectIsTerminal(t *testing.T) {
	s := schema.MustBuild(schema.Field{Name: "id", Type: schema.Int})

	t.Run("after valid collect", func(t *testing.T) {
		lazy, err := NewLazy(context.Background(), s,
			memory.Defer(memory.MustNew(memory.Series{Name: "id", Values: []any{int64(1)}})),
			testOpts(t))
		require.NoError(t, err)

		_, err = lazy.Collect(context.Background())
		require.NoError(t, err)

		_, err = lazy.Collect(context.Background())
		assert.ErrorIs(t, err, ErrCollected)
		assert.Equal(t, StateCollectedValid, lazy.State())
	})

	t.Run("after invalid collect", func(t *testing.T) {
		lazy, err := NewLazy(context.Background(), s,
			memory.Defer(memory.MustNew(memory.Series{
				Name: "id", Type: memory.TagInt, Values: []any{int64(1), nil},
			})),
			testOpts(t))
		require.NoError(t, err)

		_, err = lazy.Collect(context.Background())
		require.Error(t, err)
		assert.Equal(t, StateCollectedInvalid, lazy.State())

		_, err = lazy.Collect(context.Background())
		assert.ErrorIs(t, err, ErrCollected)
	})
}

func TestLazyObjectColumnDeferredClassification(t *testing.T) {
	// An object column passes the structural phase; its per-value type
	// check runs only against materialized data.
	s := schema.MustBuild(schema.Field{Name: "age", Type: schema.Int, Nullable: true})
	lt := memory.DeferFunc(
		[]adapter.ColumnMeta{{Name: "age", Type: adapter.NativeType{Tag: memory.TagObject, Nullable: true}}},
		func(context.Context) (*memory.Table, error) {
			return memory.MustNew(memory.Series{
				Name: "age", Type: memory.TagObject,
				Values: []any{int64(1), "x"},
			}), nil
		},
	)

	lazy, err := NewLazy(context.Background(), s, lt, testOpts(t))
	require.NoError(t, err, "object columns defer their type check")

	_, err = lazy.Collect(context.Background())
	rep := requireReport(t, err)
	require.Len(t, rep.Findings, 1)
	f := rep.Findings[0]
	assert.Equal(t, report.KindTypeMismatch, f.Kind)
	assert.Equal(t, "expected int", f.Message)
	require.Len(t, f.Examples, 1)
	assert.Equal(t, "str", f.Examples[0].ActualType)
}

func TestLazyEmptyTable(t *testing.T) {
	s := schema.MustBuild(
		schema.Field{Name: "id", Type: schema.Int,
			Validators: []schema.Validator{validator.NewUnique()}},
		schema.Field{Name: "name", Type: schema.Str, Nullable: true},
	)

	lazy, err := NewLazy(context.Background(), s, memory.NewEmptyLazy(s), testOpts(t))
	require.NoError(t, err)

	tbl, err := lazy.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCollectedValid, lazy.State())

	total, err := tbl.RowCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "constructed", StateConstructed.String())
	assert.Equal(t, "schema-validated", StateSchemaValidated.String())
	assert.Equal(t, "collected-valid", StateCollectedValid.String())
	assert.Equal(t, "collected-invalid", StateCollectedInvalid.String())
	assert.Equal(t, "unknown", State(99).String())
}
