package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/assetops/asset"
)

// MaxFingerprintLength is the maximum allowed length for a fingerprint.
const MaxFingerprintLength = 128

// Sentinel errors for store operations.
var (
	ErrNilStore           = errors.New("cache: store is nil")
	ErrInvalidFingerprint = errors.New("cache: fingerprint is invalid")
	ErrFingerprintTooLong = errors.New("cache: fingerprint exceeds max length")
	ErrMissingRoot        = errors.New("cache: store root is required")
)

// Bundle is a persisted, combined artifact.
type Bundle struct {
	Fingerprint string
	Kind        asset.Kind

	// Content is set by Write only; Lookup does not read the file.
	Content []byte

	// Path is where the artifact lives in the store.
	Path string

	// ModTime is the artifact's modification time, the source of the
	// version token.
	ModTime time.Time
}

// Version returns the cache-busting token: the modification time in Unix seconds.
func (b Bundle) Version() string {
	return strconv.FormatInt(b.ModTime.Unix(), 10)
}

// FileName returns "<fingerprint>.<ext>".
func (b Bundle) FileName() string {
	return FileName(b.Fingerprint, b.Kind)
}

// FileName returns the artifact file name for a fingerprint and kind.
func FileName(fingerprint string, kind asset.Kind) string {
	return fingerprint + "." + kind.Ext()
}

// DirName returns the per-kind directory name, "js-compress" or "css-compress".
func DirName(kind asset.Kind) string {
	return kind.String() + "-compress"
}

// Store maps fingerprints to bundle artifacts.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use, including
//   concurrent writes of the same fingerprint.
// - Atomicity: a Lookup never observes a partially written artifact.
// - Errors: Lookup returns (Bundle{}, false, nil) on a miss; failures are
//   returned as *StoreError.
type Store interface {
	// Lookup reports whether an artifact exists for fingerprint and kind.
	Lookup(ctx context.Context, fingerprint string, kind asset.Kind) (Bundle, bool, error)

	// Write persists content as the artifact for fingerprint and kind.
	Write(ctx context.Context, fingerprint string, kind asset.Kind, content []byte) (Bundle, error)

	// PublicReference returns the versioned URL of b.
	PublicReference(b Bundle) string
}

// ValidateFingerprint checks that a fingerprint is usable as a file name.
func ValidateFingerprint(fp string) error {
	if fp == "" || strings.TrimSpace(fp) == "" {
		return ErrInvalidFingerprint
	}
	if len(fp) > MaxFingerprintLength {
		return ErrFingerprintTooLong
	}
	if strings.ContainsAny(fp, "/\\\n\r.") {
		return ErrInvalidFingerprint
	}
	return nil
}

// publicReference joins base URL, kind directory and file name and appends
// the version token.
func publicReference(baseURL string, b Bundle) string {
	return fmt.Sprintf("%s/%s/%s?v=%s",
		strings.TrimRight(baseURL, "/"), DirName(b.Kind), b.FileName(), b.Version())
}
