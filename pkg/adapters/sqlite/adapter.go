package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kitagry/pavise/pkg/adapter"
	"github.com/kitagry/pavise/pkg/schema"

	_ "modernc.org/sqlite" // sqlite driver
)

// Backend implements the adapter.Backend interface for SQLite.
type Backend struct {
	adapter.BaseSQL
}

// New creates a new SQLite backend instance.
func New(logger *slog.Logger) *Backend {
	b := &Backend{}
	b.Logger = logger
	return b
}

// Connect opens the SQLite database at cfg.Path. An empty path opens an
// in-memory database.
func (b *Backend) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	b.DB = db
	b.Cfg = cfg
	return nil
}

// Table opens an existing table as an eager Table, loading its column
// metadata via PRAGMA table_info.
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
			return nil, fmt.Errorf("field %q: no sqlite dtype for %s", f.Name, f.Type)
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

// TypeMap returns the SQLite type mapping.
func (b *Backend) TypeMap() adapter.TypeMap { return TypeMap() }

func (b *Backend) columnMetadata(ctx context.Context, table string) ([]adapter.Column, error) {
	if b.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	//nolint:gosec // identifier is quoted
	query := fmt.Sprintf("PRAGMA table_info(%s)", adapter.QuoteIdent(table))
	rows, err := b.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []adapter.Column
	for rows.Next() {
		var (
			cid     int
			name    string
			dtype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &dtype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		columns = append(columns, adapter.Column{
			Name:     name,
			Type:     adapter.NativeType{Tag: dtype, Nullable: notnull == 0},
			Position: cid + 1,
		})
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
