package duckdb

import (
	"strings"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

// typeMap is DuckDB's fixed logical/native mapping. Numeric width
// variants collapse to the nearest logical type. Nullability is part of
// the native type: columns are declared NOT NULL or not, so a
// non-nullable field against a nullable column is a type mismatch even
// when no nulls are present.
type typeMap struct{}

// TypeMap returns the DuckDB type mapping.
func TypeMap() adapter.TypeMap { return typeMap{} }

func (typeMap) ToNative(t schema.LogicalType, nullable bool) (adapter.NativeType, bool) {
	var tag string
	switch t.Kind {
	case schema.KindInt:
		tag = "BIGINT"
	case schema.KindFloat:
		tag = "DOUBLE"
	case schema.KindStr:
		tag = "VARCHAR"
	case schema.KindBool:
		tag = "BOOLEAN"
	case schema.KindDatetime:
		tag = "TIMESTAMP"
	case schema.KindDate:
		tag = "DATE"
	case schema.KindDuration:
		tag = "INTERVAL"
	case schema.KindNative:
		tag = t.NativeTag
	default:
		return adapter.NativeType{}, false
	}
	return adapter.NativeType{Tag: tag, Nullable: nullable}, true
}

func (typeMap) FromNative(nt adapter.NativeType) (schema.LogicalType, bool) {
	switch normalizeTag(nt.Tag) {
	case "TINYINT", "SMALLINT", "INTEGER", "INT", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT":
		return schema.Int, true
	case "FLOAT", "REAL", "DOUBLE", "DECIMAL", "NUMERIC":
		return schema.Float, true
	case "VARCHAR", "CHAR", "BPCHAR", "TEXT", "STRING":
		return schema.Str, true
	case "BOOLEAN", "BOOL", "LOGICAL":
		return schema.Bool, true
	case "TIMESTAMP", "DATETIME", "TIMESTAMPTZ",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS":
		return schema.Datetime, true
	case "DATE":
		return schema.Date, true
	case "INTERVAL":
		return schema.Duration, true
	default:
		return schema.LogicalType{}, false
	}
}

func (typeMap) InherentNullability() bool { return false }

// normalizeTag upper-cases a dtype tag and strips any precision suffix,
// e.g. "DECIMAL(18,3)" becomes "DECIMAL".
func normalizeTag(tag string) string {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if i := strings.IndexByte(tag, '('); i >= 0 {
		tag = strings.TrimSpace(tag[:i])
	}
	return tag
}
