package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jonwraymond/assetops/asset"
	"github.com/jonwraymond/assetops/cache"
	"github.com/jonwraymond/assetops/observe"
)

// countingStore wraps a MemoryStore and counts calls.
type countingStore struct {
	*cache.MemoryStore
	lookups  atomic.Int64
	writes   atomic.Int64
	writeErr error
	lookErr  error
	last     atomic.Value // string fingerprint
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: cache.NewMemoryStore("/assets")}
}

func (s *countingStore) Lookup(ctx context.Context, fp string, kind asset.Kind) (cache.Bundle, bool, error) {
	s.lookups.Add(1)
	if s.lookErr != nil {
		return cache.Bundle{}, false, s.lookErr
	}
	return s.MemoryStore.Lookup(ctx, fp, kind)
}

func (s *countingStore) Write(ctx context.Context, fp string, kind asset.Kind, content []byte) (cache.Bundle, error) {
	s.writes.Add(1)
	if s.writeErr != nil {
		return cache.Bundle{}, s.writeErr
	}
	s.last.Store(fp)
	return s.MemoryStore.Write(ctx, fp, kind, content)
}

func (s *countingStore) lastContent(t *testing.T, kind asset.Kind) string {
	t.Helper()
	fp, _ := s.last.Load().(string)
	data, ok := s.Content(fp, kind)
	if !ok {
		t.Fatalf("no bundle written for %q", fp)
	}
	return string(data)
}

// mapReader serves content from a map and counts reads.
type mapReader struct {
	mu    sync.Mutex
	files map[string]string
	fail  map[string]error
	reads []string
}

func (r *mapReader) Read(_ context.Context, ref asset.Reference) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads = append(r.reads, ref.ID)
	if err, ok := r.fail[ref.ID]; ok {
		return nil, err
	}
	data, ok := r.files[ref.ID]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(data), nil
}

func (r *mapReader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reads)
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func mustRef(t *testing.T, kind asset.Kind, id string) asset.Reference {
	t.Helper()
	ref, err := asset.NewReference(kind, id, "")
	if err != nil {
		t.Fatalf("NewReference(%q) error = %v", id, err)
	}
	return ref
}

func group(t *testing.T, kind asset.Kind, ids ...string) asset.Group {
	t.Helper()
	g := make(asset.Group, len(ids))
	for i, id := range ids {
		g[i] = mustRef(t, kind, id)
	}
	return g
}

func newTestEngine(t *testing.T, cfg asset.Config, store cache.Store, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, store, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func testConfig(t *testing.T) asset.Config {
	t.Helper()
	return asset.DefaultConfig(t.TempDir())
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func bufferLogger(buf *bytes.Buffer) Option {
	return WithLogger(observe.NewLoggerWithWriter("debug", buf))
}
