package memory

import (
	"time"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

// Native dtype tags of the memory backend. Columns holding values of
// mixed runtime types carry TagObject and are checked value by value.
const (
	TagInt      = "int64"
	TagFloat    = "float64"
	TagStr      = "str"
	TagBool     = "bool"
	TagDatetime = "datetime"
	TagDate     = "date"
	TagDuration = "duration"
	TagObject   = "object"
)

// typeMap is the memory backend's fixed logical/native mapping. Every
// memory column is inherently nullable, so nullable and non-nullable
// logical fields map to the same tag and null presence is enforced
// against the data.
type typeMap struct{}

// TypeMap returns the memory backend's type mapping.
func TypeMap() adapter.TypeMap { return typeMap{} }

func (typeMap) ToNative(t schema.LogicalType, _ bool) (adapter.NativeType, bool) {
	var tag string
	switch t.Kind {
	case schema.KindInt:
		tag = TagInt
	case schema.KindFloat:
		tag = TagFloat
	case schema.KindStr:
		tag = TagStr
	case schema.KindBool:
		tag = TagBool
	case schema.KindDatetime:
		tag = TagDatetime
	case schema.KindDate:
		tag = TagDate
	case schema.KindDuration:
		tag = TagDuration
	case schema.KindNative:
		tag = t.NativeTag
	default:
		return adapter.NativeType{}, false
	}
	return adapter.NativeType{Tag: tag, Nullable: true}, true
}

func (typeMap) FromNative(nt adapter.NativeType) (schema.LogicalType, bool) {
	switch nt.Tag {
	case TagInt:
		return schema.Int, true
	case TagFloat:
		return schema.Float, true
	case TagStr:
		return schema.Str, true
	case TagBool:
		return schema.Bool, true
	case TagDatetime:
		return schema.Datetime, true
	case TagDate:
		return schema.Date, true
	case TagDuration:
		return schema.Duration, true
	default:
		// TagObject has no single logical counterpart; object columns
		// are classified value by value instead.
		return schema.LogicalType{}, false
	}
}

func (typeMap) InherentNullability() bool { return true }

// seriesTag classifies one value for dtype inference.
func seriesTag(v any) string {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TagInt
	case float32, float64:
		return TagFloat
	case string:
		return TagStr
	case bool:
		return TagBool
	case time.Time:
		return TagDatetime
	case time.Duration:
		return TagDuration
	default:
		return TagObject
	}
}

// valueTag classifies one value's runtime type for diagnostics.
func valueTag(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case string:
		return "str"
	case bool:
		return "bool"
	case time.Time:
		return "datetime"
	case time.Duration:
		return "duration"
	default:
		return "object"
	}
}

// valueIs reports whether a single value of a duck-typed column
// satisfies the logical type.
func valueIs(v any, t schema.LogicalType) bool {
	switch t.Kind {
	case schema.KindInt:
		return valueTag(v) == "int"
	case schema.KindFloat:
		// Integers widen to float, matching numeric column semantics.
		tag := valueTag(v)
		return tag == "float" || tag == "int"
	case schema.KindStr:
		return valueTag(v) == "str"
	case schema.KindBool:
		return valueTag(v) == "bool"
	case schema.KindDatetime, schema.KindDate:
		_, ok := v.(time.Time)
		return ok
	case schema.KindDuration:
		_, ok := v.(time.Duration)
		return ok
	case schema.KindNative:
		return seriesTag(v) == t.NativeTag
	default:
		return false
	}
}
