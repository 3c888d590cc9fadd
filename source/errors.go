package source

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by ReadError.Is.
var (
	ErrNotFound   = errors.New("source: asset not found")
	ErrUnreadable = errors.New("source: asset unreadable")
	ErrFetch      = errors.New("source: fetch failed")
	ErrTimeout    = errors.New("source: read timed out")
)

// ErrOutsideWebroot is the cause recorded when a local identifier resolves
// outside the webroot.
var ErrOutsideWebroot = errors.New("source: path escapes webroot")

// ReadErrorKind classifies a read failure.
type ReadErrorKind int

const (
	// NotFound means the local file does not exist.
	NotFound ReadErrorKind = iota
	// Unreadable means the local file exists but cannot be opened or read.
	Unreadable
	// FetchError means a remote read failed in transport or with a non-2xx status.
	FetchError
	// Timeout means a remote read exceeded its deadline.
	Timeout
)

// String returns the string representation of the kind.
func (k ReadErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Unreadable:
		return "unreadable"
	case FetchError:
		return "fetch_error"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

func (k ReadErrorKind) sentinel() error {
	switch k {
	case NotFound:
		return ErrNotFound
	case Unreadable:
		return ErrUnreadable
	case Timeout:
		return ErrTimeout
	default:
		return ErrFetch
	}
}

// ReadError describes why an asset could not be read.
type ReadError struct {
	Kind ReadErrorKind

	// ID is the identifier as passed to the reader.
	ID string

	// Status is the HTTP status of a remote read, zero otherwise.
	Status int

	// Err is the underlying cause, if any.
	Err error
}

func (e *ReadError) Error() string {
	msg := fmt.Sprintf("source: %s reading %q", e.Kind, e.ID)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind, so errors.Is(err, ErrTimeout) works.
func (e *ReadError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newReadError(kind ReadErrorKind, id string, err error) *ReadError {
	return &ReadError{Kind: kind, ID: id, Err: err}
}

var errNoReader = errors.New("no reader configured")
