package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/assetops/asset"
)

// MemoryStore keeps bundles in memory. It suits tests and hosts that serve
// bundles from the process itself; artifacts do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	baseURL string
	now     func() time.Time
}

type memoryEntry struct {
	content []byte
	modTime time.Time
}

// NewMemoryStore creates an in-memory store whose public references start
// with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		baseURL: baseURL,
		now:     time.Now,
	}
}

func memoryKey(fingerprint string, kind asset.Kind) string {
	return FileName(fingerprint, kind)
}

// Lookup returns the stored bundle, without content.
func (s *MemoryStore) Lookup(_ context.Context, fingerprint string, kind asset.Kind) (Bundle, bool, error) {
	if err := ValidateFingerprint(fingerprint); err != nil {
		return Bundle{}, false, err
	}

	s.mu.RLock()
	entry, ok := s.entries[memoryKey(fingerprint, kind)]
	s.mu.RUnlock()
	if !ok {
		return Bundle{}, false, nil
	}

	return Bundle{
		Fingerprint: fingerprint,
		Kind:        kind,
		Path:        memoryKey(fingerprint, kind),
		ModTime:     entry.modTime,
	}, true, nil
}

// Write stores a copy of content. The version token always advances on
// overwrite.
func (s *MemoryStore) Write(_ context.Context, fingerprint string, kind asset.Kind, content []byte) (Bundle, error) {
	if err := ValidateFingerprint(fingerprint); err != nil {
		return Bundle{}, err
	}

	data := append([]byte(nil), content...)
	key := memoryKey(fingerprint, kind)
	modTime := s.now().Truncate(time.Second)

	s.mu.Lock()
	if prev, ok := s.entries[key]; ok && modTime.Unix() <= prev.modTime.Unix() {
		modTime = time.Unix(prev.modTime.Unix()+1, 0)
	}
	s.entries[key] = &memoryEntry{content: data, modTime: modTime}
	s.mu.Unlock()

	return Bundle{
		Fingerprint: fingerprint,
		Kind:        kind,
		Content:     data,
		Path:        key,
		ModTime:     modTime,
	}, nil
}

// Content returns the stored bytes for fingerprint and kind.
func (s *MemoryStore) Content(fingerprint string, kind asset.Kind) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[memoryKey(fingerprint, kind)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), entry.content...), true
}

// Len returns the number of stored bundles.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// PublicReference returns the versioned URL of b.
func (s *MemoryStore) PublicReference(b Bundle) string {
	return publicReference(s.baseURL, b)
}

// Purge drops bundles the policy considers expired.
func (s *MemoryStore) Purge(_ context.Context, policy RetentionPolicy) (PurgeResult, error) {
	var res PurgeResult
	if !policy.ShouldPurge() {
		return res, nil
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if policy.Expired(entry.modTime, now) {
			delete(s.entries, key)
			res.Removed++
			res.Bytes += int64(len(entry.content))
			continue
		}
		res.Kept++
	}
	return res, nil
}

// Purger is implemented by stores that can drop expired artifacts.
type Purger interface {
	Purge(ctx context.Context, policy RetentionPolicy) (PurgeResult, error)
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Purger = (*MemoryStore)(nil)
	_ Purger = (*FileStore)(nil)
)
