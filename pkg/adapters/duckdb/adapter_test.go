package duckdb

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitagry/pavise/internal/testutil"
	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

func TestTypeMapToNative(t *testing.T) {
	tests := []struct {
		name     string
		logical  schema.LogicalType
		nullable bool
		wantTag  string
		wantOK   bool
	}{
		{name: "int", logical: schema.Int, wantTag: "BIGINT", wantOK: true},
		{name: "float", logical: schema.Float, wantTag: "DOUBLE", wantOK: true},
		{name: "str", logical: schema.Str, wantTag: "VARCHAR", wantOK: true},
		{name: "bool", logical: schema.Bool, wantTag: "BOOLEAN", wantOK: true},
		{name: "datetime", logical: schema.Datetime, wantTag: "TIMESTAMP", wantOK: true},
		{name: "date", logical: schema.Date, wantTag: "DATE", wantOK: true},
		{name: "duration", logical: schema.Duration, wantTag: "INTERVAL", wantOK: true},
		{name: "native passthrough", logical: schema.Native("UUID"), wantTag: "UUID", wantOK: true},
		{name: "nullable carried", logical: schema.Int, nullable: true, wantTag: "BIGINT", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nt, ok := TypeMap().ToNative(tt.logical, tt.nullable)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTag, nt.Tag)
			assert.Equal(t, tt.nullable, nt.Nullable)
		})
	}
}

func TestTypeMapFromNative(t *testing.T) {
	tests := []struct {
		tag    string
		want   schema.LogicalType
		wantOK bool
	}{
		{tag: "BIGINT", want: schema.Int, wantOK: true},
		{tag: "INTEGER", want: schema.Int, wantOK: true},
		{tag: "TINYINT", want: schema.Int, wantOK: true},
		{tag: "HUGEINT", want: schema.Int, wantOK: true},
		{tag: "UBIGINT", want: schema.Int, wantOK: true},
		{tag: "DOUBLE", want: schema.Float, wantOK: true},
		{tag: "DECIMAL(18,3)", want: schema.Float, wantOK: true},
		{tag: "VARCHAR", want: schema.Str, wantOK: true},
		{tag: "varchar(255)", want: schema.Str, wantOK: true},
		{tag: "BOOLEAN", want: schema.Bool, wantOK: true},
		{tag: "TIMESTAMP", want: schema.Datetime, wantOK: true},
		{tag: "TIMESTAMP WITH TIME ZONE", want: schema.Datetime, wantOK: true},
		{tag: "DATE", want: schema.Date, wantOK: true},
		{tag: "INTERVAL", want: schema.Duration, wantOK: true},
		{tag: "BLOB", wantOK: false},
		{tag: "STRUCT(a INT)", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := TypeMap().FromNative(adapter.NativeType{Tag: tt.tag})
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTypeMapInherentNullability(t *testing.T) {
	assert.False(t, TypeMap().InherentNullability())
}

func newMockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := New(testutil.NewTestLogger(t))
	b.DB = db
	return b, mock
}

func TestTable(t *testing.T) {
	b, mock := newMockBackend(t)

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("main", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "BIGINT", "NO", 1).
			AddRow("name", "VARCHAR", "YES", 2))

	tbl, err := b.Table(context.Background(), "users")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, tbl.Columns())

	nt, err := tbl.DType("id")
	require.NoError(t, err)
	assert.Equal(t, adapter.NativeType{Tag: "BIGINT", Nullable: false}, nt)

	nt, err = tbl.DType("name")
	require.NoError(t, err)
	assert.True(t, nt.Nullable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSchemaQualified(t *testing.T) {
	b, mock := newMockBackend(t)

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("analytics", "events").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("ts", "TIMESTAMP", "YES", 1))

	tbl, err := b.Table(context.Background(), "analytics.events")
	require.NoError(t, err)
	assert.Equal(t, []string{"ts"}, tbl.Columns())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableNotFound(t *testing.T) {
	b, mock := newMockBackend(t)

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("main", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}))

	_, err := b.Table(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table missing not found")
}

func TestTableNotConnected(t *testing.T) {
	b := New(testutil.NewTestLogger(t))
	_, err := b.Table(context.Background(), "users")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
}

func TestCreateEmpty(t *testing.T) {
	b, mock := newMockBackend(t)

	s := schema.MustBuild(
		schema.Field{Name: "id", Type: schema.Int},
		schema.Field{Name: "name", Type: schema.Str, Nullable: true},
	)

	mock.ExpectExec(`CREATE TABLE "users" \("id" BIGINT NOT NULL, "name" VARCHAR\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("main", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "BIGINT", "NO", 1).
			AddRow("name", "VARCHAR", "YES", 2))

	tbl, err := b.CreateEmpty(context.Background(), "users", s)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryNotConnected(t *testing.T) {
	b := New(testutil.NewTestLogger(t))
	_, err := b.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)
}

func TestRegistered(t *testing.T) {
	_, ok := adapter.Get("duckdb")
	assert.True(t, ok)
}
