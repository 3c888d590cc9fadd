package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by StoreError.Is.
var (
	ErrDirectoryCreate = errors.New("cache: cannot create bundle directory")
	ErrWrite           = errors.New("cache: cannot write bundle")
	ErrLookup          = errors.New("cache: cannot stat bundle")
)

// StoreErrorKind classifies a store failure.
type StoreErrorKind int

const (
	// DirectoryCreateFailed means the per-kind directory could not be created.
	DirectoryCreateFailed StoreErrorKind = iota
	// WriteFailed means the artifact could not be written or renamed into place.
	WriteFailed
	// LookupFailed means the artifact could not be inspected.
	LookupFailed
)

// String returns the string representation of the kind.
func (k StoreErrorKind) String() string {
	switch k {
	case DirectoryCreateFailed:
		return "directory_create_failed"
	case WriteFailed:
		return "write_failed"
	case LookupFailed:
		return "lookup_failed"
	default:
		return "unknown"
	}
}

// StoreError describes a store failure.
type StoreError struct {
	Kind StoreErrorKind
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache: %s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("cache: %s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *StoreError) Is(target error) bool {
	switch e.Kind {
	case DirectoryCreateFailed:
		return target == ErrDirectoryCreate
	case WriteFailed:
		return target == ErrWrite
	case LookupFailed:
		return target == ErrLookup
	}
	return false
}
