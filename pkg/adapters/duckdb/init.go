// Package duckdb provides a DuckDB backend for pavise.
//
// This file registers the backend with the adapter registry. Import
// this package with a blank identifier to register it:
//
//	import _ "github.com/kitagry/pavise/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/kitagry/pavise/pkg/adapter"
)

func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Backend { return New(logger) })
}
