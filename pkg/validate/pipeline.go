package validate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/report"
	"github.com/kitagry/pavise/pkg/schema"
	"github.com/kitagry/pavise/pkg/validator"
)

// fieldResult carries one field through the pipeline: its type-phase
// outcome and whether its value checks are still pending.
type fieldResult struct {
	field schema.Field

	// finding is the type-phase finding; a field with one is excluded
	// from value checks while other fields continue independently.
	finding *report.Finding

	// object marks a duck-typed column whose type check runs against
	// classified values instead of a schema-level dtype.
	object bool

	// absent marks a not-required field missing from the table.
	absent bool

	// fatal marks a disagreement the type mapping layer cannot
	// reconcile (unmapped tag, nullability mismatch); any fatal result
	// stops the run before value checks.
	fatal bool
}

// run holds the per-validation state of one pipeline execution. A run is
// single-use; concurrent validations each own their run.
type run struct {
	schema *schema.Schema
	tm     adapter.TypeMap
	vt     adapter.ValueTyper
	opts   Options
}

func (r *run) declared() map[string]struct{} {
	set := make(map[string]struct{}, r.schema.Len())
	for _, name := range r.schema.Names() {
		set[name] = struct{}{}
	}
	return set
}

// presence checks that every required field exists. Missing names are
// collected into one finding rather than short-circuited individually.
func (r *run) presence(cols []string) *report.Finding {
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c] = struct{}{}
	}
	var missing []string
	for _, f := range r.schema.Fields() {
		if _, ok := set[f.Name]; ok || f.NotRequired {
			continue
		}
		missing = append(missing, f.Name)
	}
	if len(missing) == 0 {
		return nil
	}
	return &report.Finding{
		Kind:    report.KindMissingColumns,
		Message: "missing required columns: " + report.FormatNames(missing),
	}
}

// extras reports undeclared table columns, already in native order.
func (r *run) extras(extra []string) *report.Finding {
	if len(extra) == 0 {
		return nil
	}
	return &report.Finding{
		Kind:    report.KindExtraColumns,
		Message: "unexpected columns: " + report.FormatNames(extra),
	}
}

// typeCheck compares each present field's declared type against the
// actual dtype. Duck-typed columns are deferred to objectCheck.
// Unmapped-dtype takes precedence over a nullability mismatch when both
// apply.
func (r *run) typeCheck(meta map[string]adapter.NativeType) (results []fieldResult, fatal bool) {
	results = make([]fieldResult, 0, r.schema.Len())
	for _, f := range r.schema.Fields() {
		fr := fieldResult{field: f}
		dt, present := meta[f.Name]
		switch {
		case !present:
			fr.absent = true

		case f.Type.Kind == schema.KindNative:
			if dt.Tag != f.Type.NativeTag {
				fr.finding = typeMismatch(f, dt.Tag)
			}

		case r.vt != nil && dt.Tag == r.vt.ObjectType().Tag:
			fr.object = true

		default:
			fr.finding, fr.fatal = r.checkMappedType(f, dt)
		}
		if fr.fatal {
			fatal = true
		}
		results = append(results, fr)
	}
	return results, fatal
}

func (r *run) checkMappedType(f schema.Field, dt adapter.NativeType) (*report.Finding, bool) {
	if _, ok := r.tm.ToNative(f.Type, f.Nullable); !ok {
		return &report.Finding{
			Kind:    report.KindTypeMismatch,
			Column:  f.Name,
			Message: fmt.Sprintf("declared type %s is not supported by this backend", f.Type),
		}, true
	}
	lt, ok := r.tm.FromNative(dt)
	if !ok {
		// Unmapped backend dtype: reported as a mismatch, checked
		// before nullability.
		return typeMismatch(f, dt.Tag), true
	}
	if lt.Kind != f.Type.Kind {
		return typeMismatch(f, dt.Tag), false
	}
	if !r.tm.InherentNullability() && !f.Nullable && dt.Nullable {
		return &report.Finding{
			Kind:    report.KindNullability,
			Column:  f.Name,
			Message: fmt.Sprintf("expected non-nullable %s, got nullable %s", dt.Tag, dt.Tag),
		}, true
	}
	return nil, false
}

func typeMismatch(f schema.Field, actual string) *report.Finding {
	return &report.Finding{
		Kind:    report.KindTypeMismatch,
		Column:  f.Name,
		Message: fmt.Sprintf("expected %s, got %s", f.Type, actual),
	}
}

// objectCheck classifies sampled values of duck-typed columns against
// the declared logical type, filling in type findings for fields whose
// values disagree.
func (r *run) objectCheck(ctx context.Context, tbl adapter.Table, results []fieldResult) error {
	for i := range results {
		fr := &results[i]
		if !fr.object || fr.absent || fr.finding != nil {
			continue
		}
		s, err := tbl.Sample(ctx, fr.field.Name, r.opts.TypeCheckSampleRows)
		if err != nil {
			return fmt.Errorf("sampling column %q: %w", fr.field.Name, err)
		}
		var examples []report.Example
		invalid := 0
		for _, cell := range s.Cells {
			// Nulls are the nullability check's concern.
			if cell.Value == nil {
				continue
			}
			if r.vt.ValueIs(cell.Value, fr.field.Type) {
				continue
			}
			invalid++
			if len(examples) < r.opts.MaxExamplesPerField {
				examples = append(examples, report.Example{
					Row:        cell.Row,
					Value:      report.FormatValue(cell.Value),
					ActualType: r.vt.ValueTag(cell.Value),
				})
			}
		}
		if invalid > 0 {
			fr.finding = &report.Finding{
				Kind:      report.KindTypeMismatch,
				Column:    fr.field.Name,
				Message:   fmt.Sprintf("expected %s", fr.field.Type),
				Examples:  examples,
				MoreCount: invalid - len(examples),
			}
		}
	}
	return nil
}

// valuePhase runs the per-field value checks for every field that passed
// the type phase. Fields are independent, so the phase runs under a
// worker group; slots keep the results addressable so the final report
// is reassembled in declaration order.
func (r *run) valuePhase(ctx context.Context, tbl adapter.Table, results []fieldResult) ([][]report.Finding, error) {
	slots := make([][]report.Finding, len(results))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for i, fr := range results {
		if fr.absent || fr.finding != nil {
			continue
		}
		i, fr := i, fr
		g.Go(func() error {
			findings, err := r.checkField(ctx, tbl, fr.field)
			if err != nil {
				return err
			}
			slots[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

// checkField runs the non-null check and the field's validators in
// declaration order, reporting every failing validator, not just the
// first.
func (r *run) checkField(ctx context.Context, tbl adapter.Table, f schema.Field) ([]report.Finding, error) {
	var (
		findings []report.Finding
		sample   *adapter.ValueSample
		full     []adapter.Cell
	)
	getSample := func() (adapter.ValueSample, error) {
		if sample == nil {
			s, err := tbl.Sample(ctx, f.Name, r.opts.TypeCheckSampleRows)
			if err != nil {
				return adapter.ValueSample{}, fmt.Errorf("sampling column %q: %w", f.Name, err)
			}
			sample = &s
		}
		return *sample, nil
	}
	getFull := func() ([]adapter.Cell, error) {
		if full == nil {
			cells, err := tbl.FullScan(ctx, f.Name)
			if err != nil {
				return nil, fmt.Errorf("scanning column %q: %w", f.Name, err)
			}
			full = cells
		}
		return full, nil
	}

	if r.tm.InherentNullability() && !f.Nullable {
		cells, err := getFull()
		if err != nil {
			return nil, err
		}
		if fd := r.checkNulls(f, cells); fd != nil {
			findings = append(findings, *fd)
		}
	}

	for _, v := range f.Validators {
		switch v := v.(type) {
		case validator.FullScanValidator:
			cells, err := getFull()
			if err != nil {
				return nil, err
			}
			if fd := v.ValidateFull(f.Name, cells, r.opts.MaxDuplicateGroups); fd != nil {
				findings = append(findings, *fd)
			}
		case validator.SampleValidator:
			s, err := getSample()
			if err != nil {
				return nil, err
			}
			if fd := v.Validate(f.Name, s, r.opts.MaxExamplesPerField); fd != nil {
				findings = append(findings, *fd)
			}
		default:
			return nil, fmt.Errorf("validator %q implements no known validation interface", v.Name())
		}
	}
	return findings, nil
}

// checkNulls is the dedicated non-null check for inherently nullable
// backends, where nullability is not observable from the dtype.
func (r *run) checkNulls(f schema.Field, cells []adapter.Cell) *report.Finding {
	var examples []report.Example
	nulls := 0
	for _, cell := range cells {
		if cell.Value != nil {
			continue
		}
		nulls++
		if len(examples) < r.opts.MaxExamplesPerField {
			examples = append(examples, report.Example{Row: cell.Row, Value: "null"})
		}
	}
	if nulls == 0 {
		return nil
	}
	return &report.Finding{
		Kind:      report.KindNulls,
		Column:    f.Name,
		Message:   "is non-optional but contains null values",
		Examples:  examples,
		MoreCount: nulls - len(examples),
	}
}

// aggregate merges type-phase and value-phase findings in declaration
// order into a single error, or nil when the table is valid.
func aggregate(results []fieldResult, slots [][]report.Finding) error {
	var rep report.Report
	for i, fr := range results {
		if fr.finding != nil {
			rep.Add(fr.finding)
			continue
		}
		if slots != nil {
			rep.Findings = append(rep.Findings, slots[i]...)
		}
	}
	if rep.Empty() {
		return nil
	}
	return &report.ValidationError{Report: rep}
}

func failWith(findings ...*report.Finding) error {
	var rep report.Report
	for _, fd := range findings {
		rep.Add(fd)
	}
	return &report.ValidationError{Report: rep}
}

func asValueTyper(v any) adapter.ValueTyper {
	if vt, ok := v.(adapter.ValueTyper); ok {
		return vt
	}
	return nil
}
