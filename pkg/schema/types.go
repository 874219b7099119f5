package schema

// Kind identifies a logical, backend-independent column type.
type Kind int

// Logical type kinds.
const (
	// KindInt is a signed integer of any backend width.
	KindInt Kind = iota
	// KindFloat is a floating-point number of any backend width.
	KindFloat
	// KindStr is a UTF-8 string.
	KindStr
	// KindBool is a boolean.
	KindBool
	// KindDatetime is a point in time.
	KindDatetime
	// KindDate is a calendar date without a time component.
	KindDate
	// KindDuration is a span of time.
	KindDuration
	// KindNative pins an exact backend dtype tag, bypassing the mapping layer.
	KindNative
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBool:
		return "bool"
	case KindDatetime:
		return "datetime"
	case KindDate:
		return "date"
	case KindDuration:
		return "duration"
	case KindNative:
		return "native"
	default:
		return "unknown"
	}
}

// LogicalType is a closed union of backend-independent column types.
// The zero value is Int.
type LogicalType struct {
	Kind Kind

	// NativeTag is the pinned backend dtype tag; set only when Kind is KindNative.
	NativeTag string
}

// Canonical logical types.
var (
	Int      = LogicalType{Kind: KindInt}
	Float    = LogicalType{Kind: KindFloat}
	Str      = LogicalType{Kind: KindStr}
	Bool     = LogicalType{Kind: KindBool}
	Datetime = LogicalType{Kind: KindDatetime}
	Date     = LogicalType{Kind: KindDate}
	Duration = LogicalType{Kind: KindDuration}
)

// Native returns a logical type pinned to an exact backend dtype tag.
// Presence and validator checks still apply, but the type check compares
// the tag directly instead of going through the backend's type map.
func Native(tag string) LogicalType {
	return LogicalType{Kind: KindNative, NativeTag: tag}
}

// String returns the display name used in diagnostics, e.g. "int" or the
// pinned native tag.
func (t LogicalType) String() string {
	if t.Kind == KindNative {
		return t.NativeTag
	}
	return t.Kind.String()
}
