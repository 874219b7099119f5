// Package schema describes the structural contract a table must satisfy:
// named fields with logical types, nullability, and attached validation
// rules. A Schema is built once from a declaration and is immutable, so a
// single instance is safe to share across concurrent validations.
package schema

import (
	"errors"
	"fmt"
)

// ErrDuplicateField is returned by Build when two fields collide on name.
var ErrDuplicateField = errors.New("duplicate field")

// Error is a schema construction failure.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: field %q: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Validator is the base interface all validation rules implement. The
// concrete rule set lives in pkg/validator; the validation pipeline
// type-asserts to the richer interfaces defined there.
type Validator interface {
	// Name returns the rule name used in diagnostics, e.g. "range".
	Name() string
}

// Field declares one required column: its name, logical type, nullability
// and the ordered validators to run against its values.
type Field struct {
	Name string
	Type LogicalType

	// Nullable marks the column as allowed to contain nulls.
	Nullable bool

	// NotRequired marks the column as allowed to be absent entirely.
	// When present it is still type- and validator-checked.
	NotRequired bool

	Validators []Validator
}

// Schema is an ordered, immutable set of field declarations. Field order
// is the declaration order and matters only for diagnostic ordering, not
// for validation semantics.
type Schema struct {
	fields []Field
	index  map[string]int
}

// Build constructs a Schema from field declarations. It fails with
// ErrDuplicateField if two fields collide on name (case-sensitive).
// Type and validator correctness against real data is deferred to
// validation time.
func Build(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		if _, ok := s.index[f.Name]; ok {
			return nil, &Error{Field: f.Name, Err: ErrDuplicateField}
		}
		s.index[f.Name] = i
	}
	return s, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// schema declarations.
func MustBuild(fields ...Field) *Schema {
	s, err := Build(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the field declarations in declaration order.
// The returned slice must not be modified.
func (s *Schema) Fields() []Field { return s.fields }

// Field returns the declaration for name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// Names returns the declared field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}
