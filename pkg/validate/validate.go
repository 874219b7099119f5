// Package validate orchestrates schema validation of tabular data: a
// fixed pipeline of presence, strict-mode, type and value checks with
// deterministic ordering and bounded-cost sampling, over any backend
// implementing the adapter capability interfaces.
package validate

import (
	"context"
	"fmt"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

// Run validates an eager table against the schema. The check order is
// fixed: presence, strict-mode extras, type check, then each field's
// validators in declaration order. It returns nil when the table is
// valid, a *report.ValidationError aggregating every finding when it is
// not, or a plain error when the backend itself fails.
func Run(ctx context.Context, s *schema.Schema, tbl adapter.Table, opts Options) error {
	opts = opts.withDefaults()
	r := &run{schema: s, tm: tbl.TypeMap(), vt: asValueTyper(tbl), opts: opts}

	cols := tbl.Columns()
	if fd := r.presence(cols); fd != nil {
		return failWith(fd)
	}
	opts.Logger.Debug("presence check passed", "columns", len(cols))

	if opts.Strict {
		if fd := r.extras(tbl.ExtraColumns(r.declared())); fd != nil {
			return failWith(fd)
		}
		opts.Logger.Debug("strict extras check passed")
	}

	meta, err := columnTypes(s, tbl, cols)
	if err != nil {
		return err
	}
	results, fatal := r.typeCheck(meta)
	if err := r.objectCheck(ctx, tbl, results); err != nil {
		return err
	}
	if fatal {
		// Unreconcilable type disagreement: report without running
		// value checks.
		return aggregate(results, nil)
	}
	opts.Logger.Debug("type check complete")

	slots, err := r.valuePhase(ctx, tbl, results)
	if err != nil {
		return err
	}
	return aggregate(results, slots)
}

// columnTypes fetches the native dtype of every declared field present
// in the table.
func columnTypes(s *schema.Schema, tbl adapter.Table, cols []string) (map[string]adapter.NativeType, error) {
	present := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		present[c] = struct{}{}
	}
	meta := make(map[string]adapter.NativeType, s.Len())
	for _, f := range s.Fields() {
		if _, ok := present[f.Name]; !ok {
			continue
		}
		dt, err := tbl.DType(f.Name)
		if err != nil {
			return nil, fmt.Errorf("reading dtype of column %q: %w", f.Name, err)
		}
		meta[f.Name] = dt
	}
	return meta, nil
}
