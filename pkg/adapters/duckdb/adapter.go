package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Backend implements the adapter.Backend interface for DuckDB.
type Backend struct {
	adapter.BaseSQL
}

// New creates a new DuckDB backend instance.
func New(logger *slog.Logger) *Backend {
	b := &Backend{}
	b.Logger = logger
	return b
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (b *Backend) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	b.DB = db
	b.Cfg = cfg
	return nil
}

// Table opens an existing table as an eager Table, loading its column
// metadata from DuckDB's information_schema.
func (b *Backend) Table(ctx context.Context, name string) (adapter.Table, error) {
	cols, err := b.columnMetadata(ctx, name)
	if err != nil {
		return nil, err
	}
	return adapter.NewSQLTable(b.DB, name, cols, TypeMap(), b.Logger), nil
}

// Query defers a read query as a LazyTable; it executes only at collect
// time.
func (b *Backend) Query(_ context.Context, query string) (adapter.LazyTable, error) {
	if b.DB == nil {
		return nil, adapter.ErrNotConnected
	}
	return adapter.NewLazyQuery(b.DB, query, TypeMap(), b.Logger), nil
}

// CreateEmpty creates a zero-row table whose columns exactly match the
// declared fields and mapped dtypes, then opens it.
func (b *Backend) CreateEmpty(ctx context.Context, name string, s *schema.Schema) (adapter.Table, error) {
	if b.DB == nil {
		return nil, adapter.ErrNotConnected
	}
	defs := make([]string, 0, s.Len())
	for _, f := range s.Fields() {
		nt, ok := TypeMap().ToNative(f.Type, f.Nullable)
		if !ok {
			return nil, fmt.Errorf("field %q: no duckdb dtype for %s", f.Name, f.Type)
		}
		def := adapter.QuoteIdent(f.Name) + " " + nt.Tag
		if !nt.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	//nolint:gosec // identifiers are quoted, dtypes come from the fixed type map
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", adapter.QuoteIdent(name), strings.Join(defs, ", "))
	if err := b.Exec(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return b.Table(ctx, name)
}

// LoadCSV loads data from a CSV file into a table, creating it with an
// inferred schema via DuckDB's read_csv_auto.
func (b *Backend) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if b.DB == nil {
		return adapter.ErrNotConnected
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		adapter.QuoteIdent(tableName),
		absPath,
	)
	if err := b.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}
	return nil
}

// TypeMap returns the DuckDB type mapping.
func (b *Backend) TypeMap() adapter.TypeMap { return TypeMap() }

func (b *Backend) columnMetadata(ctx context.Context, table string) ([]adapter.Column, error) {
	if b.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	// Parse schema.table if provided
	schemaName := "main"
	tableName := table
	if parts := strings.Split(table, "."); len(parts) == 2 {
		schemaName = parts[0]
		tableName = parts[1]
	}

	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := b.DB.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []adapter.Column
	for rows.Next() {
		var (
			col      adapter.Column
			dtype    string
			nullable string
		)
		if err := rows.Scan(&col.Name, &dtype, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Type = adapter.NativeType{Tag: dtype, Nullable: nullable == "YES"}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

// Ensure Backend implements the adapter.Backend interface
var _ adapter.Backend = (*Backend)(nil)
