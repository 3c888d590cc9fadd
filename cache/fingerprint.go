package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/jonwraymond/assetops/asset"
)

// Fingerprinter derives bundle keys from asset groups.
//
// Contract:
// - Determinism: the same kind, identifiers (in order) and config always
//   produce the same fingerprint; changing any of them changes it.
// - Content independence: file contents are not read.
// - Concurrency: implementations must be safe for concurrent use.
type Fingerprinter interface {
	Fingerprint(kind asset.Kind, group asset.Group, cfg asset.Config) (string, error)
}

// DefaultFingerprinter hashes a canonical JSON document with BLAKE3.
type DefaultFingerprinter struct {
	salt map[string]any
}

// NewDefaultFingerprinter creates a fingerprinter. Salt values are mixed into
// every fingerprint; use them for anything outside asset.Config that changes
// bundle output, such as the minifier version.
func NewDefaultFingerprinter(salt map[string]any) *DefaultFingerprinter {
	return &DefaultFingerprinter{salt: salt}
}

// Fingerprint returns the first 16 bytes of BLAKE3(canonical JSON) as 32 hex
// characters.
func (f *DefaultFingerprinter) Fingerprint(kind asset.Kind, group asset.Group, cfg asset.Config) (string, error) {
	ids := make([]any, len(group))
	for i, ref := range group {
		ids[i] = ref.ID
	}

	doc := map[string]any{
		"kind":   kind.String(),
		"ids":    ids,
		"config": cfg,
	}
	if len(f.salt) > 0 {
		doc["salt"] = f.salt
	}

	canonical, err := canonicalize(doc)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize fingerprint input: %w", err)
	}

	sum := blake3.Sum256(canonical)
	return hex.EncodeToString(sum[:16]), nil
}

// canonicalize produces a deterministic JSON representation of v.
// Map keys are sorted; slices keep their order.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// Structs marshal in field order, which is stable.
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte("{")
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, ':')

		vb, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	out := []byte("[")
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		vb, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, ']'), nil
}

var _ Fingerprinter = (*DefaultFingerprinter)(nil)
