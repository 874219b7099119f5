package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"
)

// State is the lifecycle state of a lazy validation handle.
type State int

// Lazy handle states. Construction runs the structural phase; Collect
// runs the value phase and moves to one of the terminal states.
const (
	StateConstructed State = iota
	StateSchemaValidated
	StateCollectedValid
	StateCollectedInvalid
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateSchemaValidated:
		return "schema-validated"
	case StateCollectedValid:
		return "collected-valid"
	case StateCollectedInvalid:
		return "collected-invalid"
	default:
		return "unknown"
	}
}

// ErrCollected is returned by Collect once the handle has reached a
// terminal state.
var ErrCollected = errors.New("lazy table already collected")

// Lazy wraps a deferred table for two-phase validation. Structural
// checks (presence, strict extras, type check) run eagerly at
// construction against the deferred table's schema metadata, in time
// proportional to the schema; value validators run only when the
// computation is materialized through Collect.
//
// The handle owns the deferred computation but only references the
// schema, which remains shared and immutable.
type Lazy struct {
	table   adapter.LazyTable
	run     *run
	results []fieldResult
	state   State
}

// NewLazy constructs a lazy validation handle, running the structural
// phase immediately. Structural mismatches are cheap to detect and fail
// here, not at collect time.
func NewLazy(ctx context.Context, s *schema.Schema, lt adapter.LazyTable, opts Options) (*Lazy, error) {
	opts = opts.withDefaults()
	r := &run{schema: s, tm: lt.TypeMap(), vt: asValueTyper(lt), opts: opts}

	meta, err := lt.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading deferred table schema: %w", err)
	}
	names := make([]string, len(meta))
	types := make(map[string]adapter.NativeType, len(meta))
	for i, m := range meta {
		names[i] = m.Name
		types[m.Name] = m.Type
	}

	if fd := r.presence(names); fd != nil {
		return nil, failWith(fd)
	}
	if opts.Strict {
		declared := r.declared()
		var extra []string
		for _, name := range names {
			if _, ok := declared[name]; !ok {
				extra = append(extra, name)
			}
		}
		if fd := r.extras(extra); fd != nil {
			return nil, failWith(fd)
		}
	}

	results, _ := r.typeCheck(types)
	// Any structural disagreement is fatal at construction; only
	// duck-typed columns defer their classification to collect time.
	if err := aggregate(results, nil); err != nil {
		return nil, err
	}
	opts.Logger.Debug("deferred table schema validated", "fields", s.Len())

	return &Lazy{table: lt, run: r, results: results, state: StateSchemaValidated}, nil
}

// State returns the handle's current lifecycle state.
func (l *Lazy) State() State { return l.state }

// Collect materializes the deferred computation and runs the value
// phase against the result. Structural checks are not repeated; they
// were proven at construction. On success the eager table is returned
// and the handle becomes terminal valid; on validation failure the
// aggregated report is returned as the error and the handle becomes
// terminal invalid.
func (l *Lazy) Collect(ctx context.Context) (adapter.Table, error) {
	switch l.state {
	case StateCollectedValid, StateCollectedInvalid:
		return nil, ErrCollected
	case StateConstructed:
		return nil, fmt.Errorf("lazy table was not schema-validated")
	}

	tbl, err := l.table.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting deferred table: %w", err)
	}
	if l.run.vt == nil {
		l.run.vt = asValueTyper(tbl)
	}

	// Duck-typed columns could not be classified from schema metadata;
	// their type check runs now, against materialized values.
	if err := l.run.objectCheck(ctx, tbl, l.results); err != nil {
		return nil, err
	}
	slots, err := l.run.valuePhase(ctx, tbl, l.results)
	if err != nil {
		return nil, err
	}
	if err := aggregate(l.results, slots); err != nil {
		l.state = StateCollectedInvalid
		return nil, err
	}
	l.state = StateCollectedValid
	return tbl, nil
}
