package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/jonwraymond/assetops/asset"
)

// GzipSuffix is appended to the artifact name for precompressed sidecars.
const GzipSuffix = ".gz"

// FileStoreConfig configures a FileStore.
type FileStoreConfig struct {
	// Root is the asset root; bundles go to <Root>/js-compress and
	// <Root>/css-compress.
	Root string

	// BaseURL is the public URL of Root, e.g. "/assets" or
	// "https://static.example.com/assets".
	BaseURL string

	// DirMode is the permission of created directories.
	// Default: 0o755
	DirMode fs.FileMode

	// FileMode is the permission of written artifacts.
	// Default: 0o644
	FileMode fs.FileMode

	// Precompress writes a gzip sidecar (<name>.gz) next to each artifact
	// for servers that serve precompressed files.
	Precompress bool

	// GzipLevel is the sidecar compression level.
	// Default: gzip.BestCompression
	GzipLevel int

	// Now is the clock used for purging.
	// Default: time.Now
	Now func() time.Time
}

// FileStore keeps bundles on the local filesystem. It exclusively owns the
// per-kind directories under its root.
type FileStore struct {
	config FileStoreConfig
}

// NewFileStore creates a file store.
func NewFileStore(config FileStoreConfig) (*FileStore, error) {
	if strings.TrimSpace(config.Root) == "" {
		return nil, ErrMissingRoot
	}
	if config.DirMode == 0 {
		config.DirMode = 0o755
	}
	if config.FileMode == 0 {
		config.FileMode = 0o644
	}
	if config.GzipLevel == 0 {
		config.GzipLevel = gzip.BestCompression
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &FileStore{config: config}, nil
}

// Config returns the store configuration.
func (s *FileStore) Config() FileStoreConfig {
	return s.config
}

// Dir returns the directory holding bundles of kind.
func (s *FileStore) Dir(kind asset.Kind) string {
	return filepath.Join(s.config.Root, DirName(kind))
}

// Path returns where the artifact for fingerprint and kind lives.
func (s *FileStore) Path(fingerprint string, kind asset.Kind) string {
	return filepath.Join(s.Dir(kind), FileName(fingerprint, kind))
}

// Lookup stats the artifact. A missing file is a miss, not an error.
func (s *FileStore) Lookup(_ context.Context, fingerprint string, kind asset.Kind) (Bundle, bool, error) {
	if err := ValidateFingerprint(fingerprint); err != nil {
		return Bundle{}, false, err
	}

	path := s.Path(fingerprint, kind)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Bundle{}, false, nil
		}
		return Bundle{}, false, &StoreError{Kind: LookupFailed, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return Bundle{}, false, &StoreError{Kind: LookupFailed, Path: path, Err: errors.New("not a regular file")}
	}

	return Bundle{
		Fingerprint: fingerprint,
		Kind:        kind,
		Path:        path,
		ModTime:     info.ModTime(),
	}, true, nil
}

// Write stores content atomically: it is written to a temp file in the
// target directory and renamed over the final name, so a concurrent reader
// sees either the old artifact, the new one, or none.
//
// The version token of the result is strictly greater than that of any
// artifact it replaces.
func (s *FileStore) Write(ctx context.Context, fingerprint string, kind asset.Kind, content []byte) (Bundle, error) {
	if err := ValidateFingerprint(fingerprint); err != nil {
		return Bundle{}, err
	}
	if err := ctx.Err(); err != nil {
		return Bundle{}, &StoreError{Kind: WriteFailed, Path: s.Path(fingerprint, kind), Err: err}
	}

	dir := s.Dir(kind)
	if err := os.MkdirAll(dir, s.config.DirMode); err != nil {
		return Bundle{}, &StoreError{Kind: DirectoryCreateFailed, Path: dir, Err: err}
	}

	path := s.Path(fingerprint, kind)
	var previous time.Time
	if info, err := os.Stat(path); err == nil {
		previous = info.ModTime()
	}

	// The sidecar goes first so the artifact never appears without it.
	if s.config.Precompress {
		gz, err := gzipBytes(content, s.config.GzipLevel)
		if err != nil {
			return Bundle{}, &StoreError{Kind: WriteFailed, Path: path + GzipSuffix, Err: err}
		}
		if err := writeAtomic(path+GzipSuffix, gz, s.config.FileMode); err != nil {
			return Bundle{}, &StoreError{Kind: WriteFailed, Path: path + GzipSuffix, Err: err}
		}
	}

	if err := writeAtomic(path, content, s.config.FileMode); err != nil {
		return Bundle{}, &StoreError{Kind: WriteFailed, Path: path, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Bundle{}, &StoreError{Kind: WriteFailed, Path: path, Err: err}
	}
	modTime := info.ModTime()

	// Second-resolution tokens would repeat for two writes within the same
	// second; push the new mtime past the old one.
	if !previous.IsZero() && modTime.Unix() <= previous.Unix() {
		modTime = time.Unix(previous.Unix()+1, 0)
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			return Bundle{}, &StoreError{Kind: WriteFailed, Path: path, Err: err}
		}
	}

	return Bundle{
		Fingerprint: fingerprint,
		Kind:        kind,
		Content:     content,
		Path:        path,
		ModTime:     modTime,
	}, nil
}

// PublicReference returns <BaseURL>/<kind>-compress/<fingerprint>.<ext>?v=<mtime>.
func (s *FileStore) PublicReference(b Bundle) string {
	return publicReference(s.config.BaseURL, b)
}

// Purge removes artifacts, sidecars and leftover temp files that the policy
// considers expired. It never touches files outside the per-kind directories.
func (s *FileStore) Purge(ctx context.Context, policy RetentionPolicy) (PurgeResult, error) {
	var res PurgeResult
	if !policy.ShouldPurge() {
		return res, nil
	}
	now := s.config.Now()

	for _, kind := range []asset.Kind{asset.KindScript, asset.KindStyle} {
		entries, err := os.ReadDir(s.Dir(kind))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return res, fmt.Errorf("cache: purge %s: %w", s.Dir(kind), err)
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !policy.Expired(info.ModTime(), now) {
				res.Kept++
				continue
			}
			if err := os.Remove(filepath.Join(s.Dir(kind), entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return res, fmt.Errorf("cache: purge %s: %w", entry.Name(), err)
			}
			res.Removed++
			res.Bytes += info.Size()
		}
	}
	return res, nil
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte, mode fs.FileMode) error {
	dir, name := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

func gzipBytes(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ Store = (*FileStore)(nil)
