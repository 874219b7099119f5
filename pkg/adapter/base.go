package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// BaseSQL provides common database/sql functionality for SQL backends.
// Embed this struct in concrete backend implementations to get standard
// Close, Exec and Query implementations.
type BaseSQL struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQL) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQL) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	if _, err := b.DB.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQL) IsConnected() bool {
	return b.DB != nil
}

// QuoteIdent quotes a SQL identifier with double quotes, doubling any
// embedded quote. Dotted names are quoted per part so schema-qualified
// tables work.
func QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// Column is one column of a SQL table's cached metadata.
type Column struct {
	Name     string
	Type     NativeType
	Position int
}

// SQLTable implements Table over a database/sql connection. Column
// metadata is loaded once when the table is opened; value queries run
// on demand.
type SQLTable struct {
	db     *sql.DB
	name   string
	cols   []Column
	tm     TypeMap
	logger *slog.Logger

	mu       sync.Mutex
	rowCount int
	counted  bool
}

// NewSQLTable wraps an opened table. cols must be in the table's native
// column order.
func NewSQLTable(db *sql.DB, name string, cols []Column, tm TypeMap, logger *slog.Logger) *SQLTable {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SQLTable{db: db, name: name, cols: cols, tm: tm, logger: logger}
}

// Columns returns the column names in native order.
func (t *SQLTable) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// DType returns the native dtype of column.
func (t *SQLTable) DType(column string) (NativeType, error) {
	for _, c := range t.cols {
		if c.Name == column {
			return c.Type, nil
		}
	}
	return NativeType{}, fmt.Errorf("column %q: %w", column, ErrNoSuchColumn)
}

// Sample returns the first maxRows values of column.
func (t *SQLTable) Sample(ctx context.Context, column string, maxRows int) (ValueSample, error) {
	if _, err := t.DType(column); err != nil {
		return ValueSample{}, err
	}
	total, err := t.RowCount(ctx)
	if err != nil {
		return ValueSample{}, err
	}

	//nolint:gosec // identifiers are quoted
	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d", QuoteIdent(column), QuoteIdent(t.name), maxRows)
	cells, err := t.scan(ctx, query)
	if err != nil {
		return ValueSample{}, err
	}
	return ValueSample{
		Cells:     cells,
		TotalRows: total,
		Truncated: total > len(cells),
	}, nil
}

// FullScan returns every value of column.
func (t *SQLTable) FullScan(ctx context.Context, column string) ([]Cell, error) {
	if _, err := t.DType(column); err != nil {
		return nil, err
	}
	//nolint:gosec // identifiers are quoted
	query := fmt.Sprintf("SELECT %s FROM %s", QuoteIdent(column), QuoteIdent(t.name))
	return t.scan(ctx, query)
}

// RowCount returns the table's row count, computed once and cached.
func (t *SQLTable) RowCount(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counted {
		return t.rowCount, nil
	}
	//nolint:gosec // identifiers are quoted
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdent(t.name))
	if err := t.db.QueryRowContext(ctx, query).Scan(&t.rowCount); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", t.name, err)
	}
	t.counted = true
	return t.rowCount, nil
}

// ExtraColumns returns the table's columns not in declared, in native order.
func (t *SQLTable) ExtraColumns(declared map[string]struct{}) []string {
	var extras []string
	for _, c := range t.cols {
		if _, ok := declared[c.Name]; !ok {
			extras = append(extras, c.Name)
		}
	}
	return extras
}

// TypeMap returns the backend's type mapping.
func (t *SQLTable) TypeMap() TypeMap { return t.tm }

func (t *SQLTable) scan(ctx context.Context, query string) ([]Cell, error) {
	t.logger.Debug("scanning column values", "query", query)
	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cells []Cell
	idx := 0
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		cells = append(cells, Cell{Row: idx, Value: normalizeSQLValue(v)})
		idx++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating values: %w", err)
	}
	return cells, nil
}

// normalizeSQLValue converts driver byte slices to strings so sampled
// values render readably.
func normalizeSQLValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// LazyQuery implements LazyTable over a deferred SQL read query. The
// query runs only at Collect; Schema inspects the result shape via a
// zero-row probe.
type LazyQuery struct {
	db     *sql.DB
	query  string
	tm     TypeMap
	logger *slog.Logger
}

// NewLazyQuery defers query against db.
func NewLazyQuery(db *sql.DB, query string, tm TypeMap, logger *slog.Logger) *LazyQuery {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LazyQuery{db: db, query: query, tm: tm, logger: logger}
}

// Schema returns the query's result columns without executing it over
// data, using a LIMIT 0 probe.
func (l *LazyQuery) Schema(ctx context.Context) ([]ColumnMeta, error) {
	probe := fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT 0", l.query)
	rows, err := l.db.QueryContext(ctx, probe)
	if err != nil {
		return nil, fmt.Errorf("failed to probe query schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	meta := make([]ColumnMeta, len(cts))
	for i, ct := range cts {
		// When the driver cannot report nullability for a computed
		// column we record non-nullable, which never produces a
		// spurious nullability mismatch.
		nullable, ok := ct.Nullable()
		if !ok {
			nullable = false
		}
		meta[i] = ColumnMeta{
			Name: ct.Name(),
			Type: NativeType{Tag: ct.DatabaseTypeName(), Nullable: nullable},
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error probing query schema: %w", err)
	}
	return meta, nil
}

// Collect executes the query and materializes its full result.
func (l *LazyQuery) Collect(ctx context.Context) (Table, error) {
	l.logger.Debug("collecting deferred query", "query", l.query)
	meta, err := l.Schema(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := l.db.QueryContext(ctx, l.query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute deferred query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var data [][]any
	for rows.Next() {
		values := make([]any, len(meta))
		ptrs := make([]any, len(meta))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i := range values {
			values[i] = normalizeSQLValue(values[i])
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deferred query: %w", err)
	}

	cols := make([]Column, len(meta))
	for i, m := range meta {
		cols[i] = Column{Name: m.Name, Type: m.Type, Position: i}
	}
	return NewResultTable(cols, data, l.tm), nil
}

// TypeMap returns the backend's type mapping.
func (l *LazyQuery) TypeMap() TypeMap { return l.tm }

// ResultTable is a materialized query result held in memory, produced by
// collecting a LazyQuery.
type ResultTable struct {
	cols []Column
	rows [][]any
	tm   TypeMap
}

// NewResultTable builds a result table from column metadata and
// row-major data.
func NewResultTable(cols []Column, rows [][]any, tm TypeMap) *ResultTable {
	return &ResultTable{cols: cols, rows: rows, tm: tm}
}

// Columns returns the result's column names in order.
func (t *ResultTable) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// DType returns the native dtype of column.
func (t *ResultTable) DType(column string) (NativeType, error) {
	for _, c := range t.cols {
		if c.Name == column {
			return c.Type, nil
		}
	}
	return NativeType{}, fmt.Errorf("column %q: %w", column, ErrNoSuchColumn)
}

// Sample returns the first maxRows values of column.
func (t *ResultTable) Sample(_ context.Context, column string, maxRows int) (ValueSample, error) {
	ci, err := t.columnIndex(column)
	if err != nil {
		return ValueSample{}, err
	}
	n := min(maxRows, len(t.rows))
	cells := make([]Cell, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, Cell{Row: i, Value: t.rows[i][ci]})
	}
	return ValueSample{
		Cells:     cells,
		TotalRows: len(t.rows),
		Truncated: len(t.rows) > n,
	}, nil
}

// FullScan returns every value of column.
func (t *ResultTable) FullScan(_ context.Context, column string) ([]Cell, error) {
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	cells := make([]Cell, 0, len(t.rows))
	for i, row := range t.rows {
		cells = append(cells, Cell{Row: i, Value: row[ci]})
	}
	return cells, nil
}

// RowCount returns the number of materialized rows.
func (t *ResultTable) RowCount(context.Context) (int, error) {
	return len(t.rows), nil
}

// ExtraColumns returns result columns not in declared, in result order.
func (t *ResultTable) ExtraColumns(declared map[string]struct{}) []string {
	var extras []string
	for _, c := range t.cols {
		if _, ok := declared[c.Name]; !ok {
			extras = append(extras, c.Name)
		}
	}
	return extras
}

// TypeMap returns the backend's type mapping.
func (t *ResultTable) TypeMap() TypeMap { return t.tm }

func (t *ResultTable) columnIndex(column string) (int, error) {
	for i, c := range t.cols {
		if c.Name == column {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q: %w", column, ErrNoSuchColumn)
}
