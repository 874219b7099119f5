package schema

// Compatible reports whether a table satisfying candidate also satisfies
// required: every required field must exist in candidate under the same
// name with an equal-or-narrower type. This is an explicit structural
// check, not subtyping; extra candidate fields are ignored.
func Compatible(candidate, required *Schema) bool {
	for _, want := range required.fields {
		got, ok := candidate.Field(want.Name)
		if !ok {
			return false
		}
		if !narrower(got.Type, want.Type) {
			return false
		}
		// A nullable candidate column cannot satisfy a non-nullable
		// requirement; the reverse is fine.
		if got.Nullable && !want.Nullable {
			return false
		}
		if got.NotRequired && !want.NotRequired {
			return false
		}
	}
	return true
}

// narrower reports whether got is equal to or narrower than want.
// Native types narrow only onto themselves.
func narrower(got, want LogicalType) bool {
	if want.Kind == KindNative || got.Kind == KindNative {
		return got.Kind == KindNative && want.Kind == KindNative &&
			got.NativeTag == want.NativeTag
	}
	if got.Kind == want.Kind {
		return true
	}
	// An integer column satisfies a float requirement.
	return want.Kind == KindFloat && got.Kind == KindInt
}
