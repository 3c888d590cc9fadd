package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrNotDirectory indicates a checked path exists but is not a directory.
	ErrNotDirectory = errors.New("health: not a directory")
)
