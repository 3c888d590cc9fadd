package source

import (
	"context"

	"github.com/jonwraymond/assetops/asset"
)

// Reader retrieves the raw bytes of one asset.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: remote reads must honor cancellation/deadlines.
// - Errors: failures are returned as *ReadError.
type Reader interface {
	Read(ctx context.Context, ref asset.Reference) ([]byte, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context, ref asset.Reference) ([]byte, error)

// Read calls f(ctx, ref).
func (f ReaderFunc) Read(ctx context.Context, ref asset.Reference) ([]byte, error) {
	return f(ctx, ref)
}

// Composite dispatches local identifiers to one reader and remote URLs to another.
type Composite struct {
	local  Reader
	remote Reader
}

// NewComposite creates a composite reader. A nil remote reader makes every
// remote read fail with FetchError.
func NewComposite(local, remote Reader) *Composite {
	return &Composite{local: local, remote: remote}
}

// Read reads ref from the reader matching its locality.
func (c *Composite) Read(ctx context.Context, ref asset.Reference) ([]byte, error) {
	if ref.IsLocal() {
		if c.local == nil {
			return nil, newReadError(Unreadable, ref.ID, errNoReader)
		}
		return c.local.Read(ctx, ref)
	}
	if c.remote == nil {
		return nil, newReadError(FetchError, ref.ID, errNoReader)
	}
	return c.remote.Read(ctx, ref)
}

// Ensure implementations satisfy Reader.
var (
	_ Reader = (*Composite)(nil)
	_ Reader = (*LocalReader)(nil)
	_ Reader = (*RemoteReader)(nil)
	_ Reader = ReaderFunc(nil)
)
