package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/kitagry/pavise/pkg/schema"
)

// Config holds connection settings for a SQL-backed backend.
type Config struct {
	// Type selects the registered backend, e.g. "duckdb" or "sqlite".
	Type string

	// Path is the database location; empty or ":memory:" means an
	// in-memory database for backends that support one.
	Path string

	// Options holds backend-specific settings.
	Options map[string]string
}

// Backend is a connected table engine from which tables are opened.
// In-memory tables are constructed directly and do not go through a
// Backend; this interface exists for engines with a connection lifecycle.
type Backend interface {
	// Connect establishes the connection described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Table opens an existing table as an eager Table.
	Table(ctx context.Context, name string) (Table, error)

	// Query defers a read query as a LazyTable. The query is not
	// executed until the lazy table is collected; only its result
	// schema is inspected up front.
	Query(ctx context.Context, query string) (LazyTable, error)

	// CreateEmpty creates a zero-row table whose columns exactly match
	// the declared fields and mapped dtypes, and opens it.
	CreateEmpty(ctx context.Context, name string, s *schema.Schema) (Table, error)

	// TypeMap returns this backend's type mapping.
	TypeMap() TypeMap
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Backend)
)

// Register adds a backend factory to the registry. Called by backend
// implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a backend factory by name.
func Get(name string) (func(*slog.Logger) Backend, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Open creates a backend for cfg.Type and connects it. The logger is
// passed to the backend constructor (nil uses a discard logger).
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("backend type not specified")
	}
	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownBackendError{Type: cfg.Type, Available: List()}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := factory(logger)
	if err := b.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect %s backend: %w", cfg.Type, err)
	}
	return b, nil
}

// List returns all registered backend names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownBackendError is returned when an unregistered backend type is
// requested.
type UnknownBackendError struct {
	Type      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend type %q, available backends: %v", e.Type, e.Available)
}
