package adapter

import "errors"

// Sentinel errors shared by all backends.
var (
	// ErrNoSuchColumn is returned by DType, Sample and FullScan when the
	// column does not exist.
	ErrNoSuchColumn = errors.New("no such column")

	// ErrNotConnected is returned by SQL backends used before Connect.
	ErrNotConnected = errors.New("database connection not established")
)
