package sqlite

import (
	"strings"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

// typeMap maps logical types onto SQLite's affinity-based dtypes.
// SQLite has no native duration type, so Duration does not map.
type typeMap struct{}

// TypeMap returns the SQLite type mapping.
func TypeMap() adapter.TypeMap { return typeMap{} }

func (typeMap) ToNative(t schema.LogicalType, nullable bool) (adapter.NativeType, bool) {
	var tag string
	switch t.Kind {
	case schema.KindInt:
		tag = "INTEGER"
	case schema.KindFloat:
		tag = "REAL"
	case schema.KindStr:
		tag = "TEXT"
	case schema.KindBool:
		tag = "BOOLEAN"
	case schema.KindDatetime:
		tag = "DATETIME"
	case schema.KindDate:
		tag = "DATE"
	case schema.KindNative:
		tag = t.NativeTag
	default:
		return adapter.NativeType{}, false
	}
	return adapter.NativeType{Tag: tag, Nullable: nullable}, true
}

func (typeMap) FromNative(nt adapter.NativeType) (schema.LogicalType, bool) {
	switch normalizeTag(nt.Tag) {
	case "INTEGER", "INT", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT":
		return schema.Int, true
	case "REAL", "DOUBLE", "DOUBLE PRECISION", "FLOAT", "NUMERIC", "DECIMAL":
		return schema.Float, true
	case "TEXT", "VARCHAR", "CHAR", "CHARACTER", "NCHAR", "NVARCHAR", "CLOB":
		return schema.Str, true
	case "BOOLEAN", "BOOL":
		return schema.Bool, true
	case "DATETIME", "TIMESTAMP":
		return schema.Datetime, true
	case "DATE":
		return schema.Date, true
	default:
		return schema.LogicalType{}, false
	}
}

func (typeMap) InherentNullability() bool { return false }

func normalizeTag(tag string) string {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if i := strings.IndexByte(tag, '('); i >= 0 {
		tag = strings.TrimSpace(tag[:i])
	}
	return tag
}
