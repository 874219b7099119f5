package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/report"
)

// Range validates that numeric values fall within [Min, Max], bounds
// inclusive. Values that are not numeric and cannot be parsed as numbers
// are violations too; the raw value is shown, never a coercion.
type Range struct {
	Min, Max float64
}

// NewRange returns a Range rule with inclusive bounds.
func NewRange(min, max float64) Range {
	return Range{Min: min, Max: max}
}

// Name implements schema.Validator.
func (Range) Name() string { return "range" }

// Validate implements SampleValidator.
func (r Range) Validate(column string, s adapter.ValueSample, maxExamples int) *report.Finding {
	c := collector{max: maxExamples}
	for _, cell := range s.Cells {
		if cell.Value == nil {
			continue
		}
		f, ok := toFloat(cell.Value)
		if ok && f >= r.Min && f <= r.Max {
			continue
		}
		c.add(report.Example{Row: cell.Row, Value: report.FormatValue(cell.Value)})
	}
	msg := fmt.Sprintf("values must be in range [%v, %v]", r.Min, r.Max)
	return c.finding(report.KindRange, column, msg)
}

// In validates that values belong to a fixed allowed set. The order of
// allowed values matters only for error rendering.
type In struct {
	Allowed []any
}

// NewIn returns an In rule over the allowed values.
func NewIn(allowed ...any) In {
	return In{Allowed: allowed}
}

// Name implements schema.Validator.
func (In) Name() string { return "in" }

// Validate implements SampleValidator.
func (v In) Validate(column string, s adapter.ValueSample, maxExamples int) *report.Finding {
	members := make(map[string]struct{}, len(v.Allowed))
	for _, a := range v.Allowed {
		members[valueKey(a)] = struct{}{}
	}
	c := collector{max: maxExamples}
	for _, cell := range s.Cells {
		if cell.Value == nil {
			continue
		}
		if _, ok := members[valueKey(cell.Value)]; ok {
			continue
		}
		c.add(report.Example{Row: cell.Row, Value: report.FormatValue(cell.Value)})
	}
	parts := make([]string, len(v.Allowed))
	for i, a := range v.Allowed {
		parts[i] = report.FormatValue(a)
	}
	msg := "values must be one of [" + strings.Join(parts, ", ") + "]"
	return c.finding(report.KindIn, column, msg)
}

// Regex validates that string values fully match a pattern, start to
// end; this is a full match, not a search. Non-string values are a
// type-level concern and are skipped here.
type Regex struct {
	pattern string
	re      *regexp.Regexp
}

// NewRegex compiles pattern as a full-match rule.
func NewRegex(pattern string) (Regex, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return Regex{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return Regex{pattern: pattern, re: re}, nil
}

// MustRegex is like NewRegex but panics on an invalid pattern.
func MustRegex(pattern string) Regex {
	r, err := NewRegex(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// Name implements schema.Validator.
func (Regex) Name() string { return "regex" }

// Validate implements SampleValidator.
func (v Regex) Validate(column string, s adapter.ValueSample, maxExamples int) *report.Finding {
	c := collector{max: maxExamples}
	for _, cell := range s.Cells {
		str, ok := cell.Value.(string)
		if !ok {
			continue
		}
		if v.re.MatchString(str) {
			continue
		}
		c.add(report.Example{Row: cell.Row, Value: report.FormatValue(cell.Value)})
	}
	msg := fmt.Sprintf("values must match %q", v.pattern)
	return c.finding(report.KindRegex, column, msg)
}

// MinLen validates that string values have at least N characters,
// counted in runes, bound inclusive.
type MinLen struct {
	N int
}

// NewMinLen returns a MinLen rule.
func NewMinLen(n int) MinLen { return MinLen{N: n} }

// Name implements schema.Validator.
func (MinLen) Name() string { return "min_length" }

// Validate implements SampleValidator.
func (v MinLen) Validate(column string, s adapter.ValueSample, maxExamples int) *report.Finding {
	c := collector{max: maxExamples}
	for _, cell := range s.Cells {
		str, ok := cell.Value.(string)
		if !ok {
			continue
		}
		if utf8.RuneCountInString(str) >= v.N {
			continue
		}
		c.add(report.Example{Row: cell.Row, Value: report.FormatValue(cell.Value)})
	}
	msg := fmt.Sprintf("values must have length at least %d", v.N)
	return c.finding(report.KindMinLen, column, msg)
}

// MaxLen validates that string values have at most N characters,
// counted in runes, bound inclusive.
type MaxLen struct {
	N int
}

// NewMaxLen returns a MaxLen rule.
func NewMaxLen(n int) MaxLen { return MaxLen{N: n} }

// Name implements schema.Validator.
func (MaxLen) Name() string { return "max_length" }

// Validate implements SampleValidator.
func (v MaxLen) Validate(column string, s adapter.ValueSample, maxExamples int) *report.Finding {
	c := collector{max: maxExamples}
	for _, cell := range s.Cells {
		str, ok := cell.Value.(string)
		if !ok {
			continue
		}
		if utf8.RuneCountInString(str) <= v.N {
			continue
		}
		c.add(report.Example{Row: cell.Row, Value: report.FormatValue(cell.Value)})
	}
	msg := fmt.Sprintf("values must have length at most %d", v.N)
	return c.finding(report.KindMaxLen, column, msg)
}

// toFloat coerces a sampled value to float64 for range comparison.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// valueKey builds a comparison key that keeps values of different
// runtime types distinct, e.g. int64(2) vs "2".
func valueKey(v any) string {
	return fmt.Sprintf("%T:%v", v, v)
}
