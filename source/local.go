package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonwraymond/assetops/asset"
)

// LocalReader reads assets from a webroot directory.
type LocalReader struct {
	webroot string
}

// NewLocalReader creates a reader rooted at webroot.
func NewLocalReader(webroot string) *LocalReader {
	return &LocalReader{webroot: webroot}
}

// Webroot returns the directory identifiers are resolved against.
func (r *LocalReader) Webroot() string {
	return r.webroot
}

// Resolve maps an identifier to a path inside the webroot. The query suffix is
// stripped. Identifiers that would escape the webroot are rejected.
func (r *LocalReader) Resolve(id string) (string, error) {
	name, err := localName(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.webroot, name), nil
}

// Read reads the file behind ref. No timeout applies.
func (r *LocalReader) Read(_ context.Context, ref asset.Reference) ([]byte, error) {
	name, err := localName(ref.ID)
	if err != nil {
		return nil, newReadError(NotFound, ref.ID, err)
	}

	// OpenInRoot also refuses symlinks that lead out of the webroot.
	f, err := os.OpenInRoot(r.webroot, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newReadError(NotFound, ref.ID, err)
		}
		return nil, newReadError(Unreadable, ref.ID, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, newReadError(Unreadable, ref.ID, err)
	}
	if info.IsDir() {
		return nil, newReadError(Unreadable, ref.ID, fmt.Errorf("%s is a directory", name))
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, newReadError(Unreadable, ref.ID, err)
	}
	return data, nil
}

// localName converts an identifier into a slash-free relative name that
// filepath.IsLocal accepts.
func localName(id string) (string, error) {
	p := strings.TrimLeft(asset.StripQuery(id), "/")
	name := filepath.FromSlash(p)
	if name == "" || !filepath.IsLocal(name) {
		return "", ErrOutsideWebroot
	}
	return name, nil
}
