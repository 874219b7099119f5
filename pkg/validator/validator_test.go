package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/report"
)

func sampleOf(values ...any) adapter.ValueSample {
	cells := make([]adapter.Cell, len(values))
	for i, v := range values {
		cells[i] = adapter.Cell{Row: i, Value: v}
	}
	return adapter.ValueSample{Cells: cells, TotalRows: len(values)}
}

func cellsOf(values ...any) []adapter.Cell {
	cells := make([]adapter.Cell, len(values))
	for i, v := range values {
		cells[i] = adapter.Cell{Row: i, Value: v}
	}
	return cells
}

func TestRange(t *testing.T) {
	r := NewRange(0, 1)

	t.Run("all within bounds", func(t *testing.T) {
		f := r.Validate("score", sampleOf(0.0, 0.5, 1.0), 5)
		assert.Nil(t, f)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		f := r.Validate("score", sampleOf(0.0, 1.0), 5)
		assert.Nil(t, f)
	})

	t.Run("violations reported with rows", func(t *testing.T) {
		f := r.Validate("score", sampleOf(0.5, 1.2, -0.4), 5)
		require.NotNil(t, f)
		assert.Equal(t, report.KindRange, f.Kind)
		assert.Equal(t, "score", f.Column)
		assert.Equal(t, "values must be in range [0, 1]", f.Message)
		require.Len(t, f.Examples, 2)
		assert.Equal(t, 1, f.Examples[0].Row)
		assert.Equal(t, "1.2", f.Examples[0].Value)
		assert.Equal(t, 2, f.Examples[1].Row)
	})

	t.Run("integer values coerced", func(t *testing.T) {
		f := NewRange(0, 100).Validate("age", sampleOf(int64(30), int64(150)), 5)
		require.NotNil(t, f)
		require.Len(t, f.Examples, 1)
		assert.Equal(t, "150", f.Examples[0].Value)
	})

	t.Run("numeric strings parsed", func(t *testing.T) {
		f := NewRange(0, 10).Validate("v", sampleOf("5", "11"), 5)
		require.NotNil(t, f)
		require.Len(t, f.Examples, 1)
		assert.Equal(t, `"11"`, f.Examples[0].Value)
	})

	t.Run("non-numeric values shown raw", func(t *testing.T) {
		f := r.Validate("score", sampleOf("abc"), 5)
		require.NotNil(t, f)
		require.Len(t, f.Examples, 1)
		assert.Equal(t, `"abc"`, f.Examples[0].Value)
	})

	t.Run("nulls skipped", func(t *testing.T) {
		f := r.Validate("score", sampleOf(nil, 0.5, nil), 5)
		assert.Nil(t, f)
	})

	t.Run("examples capped with overflow count", func(t *testing.T) {
		f := r.Validate("score", sampleOf(2.0, 3.0, 4.0, 5.0, 6.0), 2)
		require.NotNil(t, f)
		assert.Len(t, f.Examples, 2)
		assert.Equal(t, 3, f.MoreCount)
	})
}

func TestIn(t *testing.T) {
	v := NewIn("a", "b", "c")

	t.Run("all allowed", func(t *testing.T) {
		assert.Nil(t, v.Validate("cat", sampleOf("a", "c", "b"), 5))
	})

	t.Run("violation", func(t *testing.T) {
		f := v.Validate("cat", sampleOf("a", "x"), 5)
		require.NotNil(t, f)
		assert.Equal(t, report.KindIn, f.Kind)
		assert.Equal(t, `values must be one of ["a", "b", "c"]`, f.Message)
		require.Len(t, f.Examples, 1)
		assert.Equal(t, 1, f.Examples[0].Row)
	})

	t.Run("type distinguishes membership", func(t *testing.T) {
		// the string "1" is not the integer 1
		f := NewIn(1, 2).Validate("v", sampleOf("1"), 5)
		require.NotNil(t, f)
	})

	t.Run("nulls skipped", func(t *testing.T) {
		assert.Nil(t, v.Validate("cat", sampleOf(nil, "a"), 5))
	})
}

func TestRegex(t *testing.T) {
	v := MustRegex(`[a-z]+@[a-z]+\.[a-z]+`)

	t.Run("full match required", func(t *testing.T) {
		f := v.Validate("email", sampleOf("a@b.com", "xx a@b.com"), 5)
		require.NotNil(t, f)
		assert.Equal(t, report.KindRegex, f.Kind)
		assert.Equal(t, `values must match "[a-z]+@[a-z]+\\.[a-z]+"`, f.Message)
		require.Len(t, f.Examples, 1)
		assert.Equal(t, 1, f.Examples[0].Row)
	})

	t.Run("all match", func(t *testing.T) {
		assert.Nil(t, v.Validate("email", sampleOf("a@b.com", "c@d.org"), 5))
	})

	t.Run("non-strings skipped", func(t *testing.T) {
		assert.Nil(t, v.Validate("email", sampleOf(42, nil), 5))
	})

	t.Run("invalid pattern rejected", func(t *testing.T) {
		_, err := NewRegex("(")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pattern")
	})

	t.Run("must panics on invalid pattern", func(t *testing.T) {
		assert.Panics(t, func() { MustRegex("(") })
	})
}

func TestMinLen(t *testing.T) {
	v := NewMinLen(3)

	t.Run("bound inclusive", func(t *testing.T) {
		assert.Nil(t, v.Validate("name", sampleOf("abc", "abcd"), 5))
	})

	t.Run("violation", func(t *testing.T) {
		f := v.Validate("name", sampleOf("ab", ""), 5)
		require.NotNil(t, f)
		assert.Equal(t, report.KindMinLen, f.Kind)
		assert.Equal(t, "values must have length at least 3", f.Message)
		assert.Len(t, f.Examples, 2)
	})

	t.Run("runes counted not bytes", func(t *testing.T) {
		assert.Nil(t, v.Validate("name", sampleOf("日本語"), 5))
	})
}

func TestMaxLen(t *testing.T) {
	v := NewMaxLen(3)

	t.Run("bound inclusive", func(t *testing.T) {
		assert.Nil(t, v.Validate("code", sampleOf("ab", "abc"), 5))
	})

	t.Run("violation", func(t *testing.T) {
		f := v.Validate("code", sampleOf("abcd"), 5)
		require.NotNil(t, f)
		assert.Equal(t, report.KindMaxLen, f.Kind)
		assert.Equal(t, "values must have length at most 3", f.Message)
	})

	t.Run("runes counted not bytes", func(t *testing.T) {
		assert.Nil(t, v.Validate("code", sampleOf("日本語"), 5))
	})
}

func TestUnique(t *testing.T) {
	v := NewUnique()

	t.Run("no duplicates", func(t *testing.T) {
		assert.Nil(t, v.ValidateFull("id", cellsOf(1, 2, 3), 5))
	})

	t.Run("groups in first occurrence order", func(t *testing.T) {
		f := v.ValidateFull("id", cellsOf(1, 2, 2, 3, 5, 5, 5), 5)
		require.NotNil(t, f)
		assert.Equal(t, report.KindUnique, f.Kind)
		assert.Equal(t, "contains duplicate values", f.Message)
		require.Len(t, f.Examples, 2)

		assert.Equal(t, "2", f.Examples[0].Value)
		assert.Equal(t, []int{1, 2}, f.Examples[0].Rows)
		assert.Equal(t, "5", f.Examples[1].Value)
		assert.Equal(t, []int{4, 5, 6}, f.Examples[1].Rows)
	})

	t.Run("nulls not counted as duplicates", func(t *testing.T) {
		assert.Nil(t, v.ValidateFull("id", cellsOf(nil, nil, 1), 5))
	})

	t.Run("groups capped with overflow count", func(t *testing.T) {
		f := v.ValidateFull("id", cellsOf("a", "a", "b", "b", "c", "c"), 2)
		require.NotNil(t, f)
		assert.Len(t, f.Examples, 2)
		assert.Equal(t, 1, f.MoreCount)
	})

	t.Run("distinct types are distinct values", func(t *testing.T) {
		assert.Nil(t, v.ValidateFull("id", cellsOf(int64(1), "1"), 5))
	})
}
