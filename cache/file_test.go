package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/jonwraymond/assetops/asset"
)

const testFP = "0123456789abcdef0123456789abcdef"

func newTestFileStore(t *testing.T, mutate ...func(*FileStoreConfig)) *FileStore {
	t.Helper()
	cfg := FileStoreConfig{Root: t.TempDir(), BaseURL: "/assets"}
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := NewFileStore(cfg)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func TestNewFileStore_RequiresRoot(t *testing.T) {
	if _, err := NewFileStore(FileStoreConfig{}); !errors.Is(err, ErrMissingRoot) {
		t.Errorf("expected ErrMissingRoot, got %v", err)
	}
}

func TestFileStore_WriteThenLookup(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if _, ok, err := s.Lookup(ctx, testFP, asset.KindStyle); ok || err != nil {
		t.Fatalf("Lookup() on empty store = (%v, %v), want miss", ok, err)
	}

	written, err := s.Write(ctx, testFP, asset.KindStyle, []byte("a{}\nb{}"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	wantPath := filepath.Join(s.Config().Root, "css-compress", testFP+".css")
	if written.Path != wantPath {
		t.Errorf("Path = %q, want %q", written.Path, wantPath)
	}

	got, ok, err := s.Lookup(ctx, testFP, asset.KindStyle)
	if err != nil || !ok {
		t.Fatalf("Lookup() after Write = (%v, %v), want hit", ok, err)
	}
	if !got.ModTime.Equal(written.ModTime) {
		t.Errorf("ModTime = %v, want %v", got.ModTime, written.ModTime)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "a{}\nb{}" {
		t.Errorf("content = %q", data)
	}

	// Kinds live in separate directories.
	if _, ok, _ := s.Lookup(ctx, testFP, asset.KindScript); ok {
		t.Error("script lookup should miss")
	}
}

func TestFileStore_PublicReference(t *testing.T) {
	for _, base := range []string{"/assets", "/assets/"} {
		s := newTestFileStore(t, func(c *FileStoreConfig) { c.BaseURL = base })
		b := Bundle{Fingerprint: testFP, Kind: asset.KindScript, ModTime: time.Unix(1700000000, 0)}

		want := "/assets/js-compress/" + testFP + ".js?v=1700000000"
		if got := s.PublicReference(b); got != want {
			t.Errorf("PublicReference() with base %q = %q, want %q", base, got, want)
		}
	}
}

func TestFileStore_VersionAdvancesOnRewrite(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	first, err := s.Write(ctx, testFP, asset.KindScript, []byte("var a;"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	second, err := s.Write(ctx, testFP, asset.KindScript, []byte("var b;"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if first.Version() == second.Version() {
		t.Fatalf("version token should change, both %s", first.Version())
	}
	if s.PublicReference(first) == s.PublicReference(second) {
		t.Error("public reference should change with content")
	}

	looked, _, _ := s.Lookup(ctx, testFP, asset.KindScript)
	if looked.Version() != second.Version() {
		t.Errorf("Lookup version = %s, want %s", looked.Version(), second.Version())
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	s := newTestFileStore(t)
	if _, err := s.Write(context.Background(), testFP, asset.KindScript, []byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	entries, err := os.ReadDir(s.Dir(asset.KindScript))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != testFP+".js" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only the artifact", names)
	}
}

func TestFileStore_DirectoryCreateFailed(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	// A regular file where the root directory should be.
	if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(FileStoreConfig{Root: root, BaseURL: "/assets"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Write(context.Background(), testFP, asset.KindStyle, []byte("a{}"))
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StoreError, got %v", err)
	}
	if se.Kind != DirectoryCreateFailed {
		t.Errorf("Kind = %v, want DirectoryCreateFailed", se.Kind)
	}
	if !errors.Is(err, ErrDirectoryCreate) {
		t.Error("errors.Is(err, ErrDirectoryCreate) should be true")
	}
}

func TestFileStore_WriteFailed(t *testing.T) {
	s := newTestFileStore(t)
	// A non-empty directory occupies the artifact path, so the rename fails.
	blocker := s.Path(testFP, asset.KindStyle)
	if err := os.MkdirAll(filepath.Join(blocker, "child"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := s.Write(context.Background(), testFP, asset.KindStyle, []byte("a{}"))
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}

	// The failed write cleans up after itself.
	entries, _ := os.ReadDir(s.Dir(asset.KindStyle))
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileStore_LookupNotRegular(t *testing.T) {
	s := newTestFileStore(t)
	if err := os.MkdirAll(s.Path(testFP, asset.KindScript), 0o755); err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.Lookup(context.Background(), testFP, asset.KindScript)
	if ok || !errors.Is(err, ErrLookup) {
		t.Errorf("Lookup() = (%v, %v), want ErrLookup", ok, err)
	}
}

func TestFileStore_InvalidFingerprint(t *testing.T) {
	s := newTestFileStore(t)
	if _, err := s.Write(context.Background(), "../escape", asset.KindScript, nil); !errors.Is(err, ErrInvalidFingerprint) {
		t.Errorf("Write() error = %v, want ErrInvalidFingerprint", err)
	}
	if _, _, err := s.Lookup(context.Background(), "", asset.KindScript); !errors.Is(err, ErrInvalidFingerprint) {
		t.Errorf("Lookup() error = %v, want ErrInvalidFingerprint", err)
	}
}

func TestFileStore_Precompress(t *testing.T) {
	s := newTestFileStore(t, func(c *FileStoreConfig) { c.Precompress = true })
	content := []byte(strings.Repeat("body{color:red}\n", 50))

	b, err := s.Write(context.Background(), testFP, asset.KindStyle, content)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := os.Open(b.Path + GzipSuffix)
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("sidecar does not decompress to the artifact content")
	}
}

func TestFileStore_ConcurrentWritesSameFingerprint(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	content := []byte(strings.Repeat("x", 1<<16))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Write(ctx, testFP, asset.KindScript, content); err != nil {
				errs <- err
			}
		}()
	}

	// Readers only ever see a complete artifact.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			data, err := os.ReadFile(s.Path(testFP, asset.KindScript))
			if err == nil && len(data) != len(content) {
				errs <- errors.New("observed partial artifact")
				return
			}
		}
	}()

	wg.Wait()
	<-done
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestFileStore_Purge(t *testing.T) {
	now := time.Now()
	s := newTestFileStore(t, func(c *FileStoreConfig) {
		c.Now = func() time.Time { return now }
	})
	ctx := context.Background()

	old, err := s.Write(ctx, "0ld", asset.KindScript, []byte("old"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write(ctx, "fresh", asset.KindStyle, []byte("fresh")); err != nil {
		t.Fatal(err)
	}
	past := now.Add(-48 * time.Hour)
	if err := os.Chtimes(old.Path, past, past); err != nil {
		t.Fatal(err)
	}

	res, err := s.Purge(ctx, RetentionPolicy{MaxAge: 24 * time.Hour})
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if res.Removed != 1 || res.Kept != 1 || res.Bytes != 3 {
		t.Errorf("Purge() = %+v, want 1 removed (3 bytes), 1 kept", res)
	}
	if _, ok, _ := s.Lookup(ctx, "0ld", asset.KindScript); ok {
		t.Error("expired artifact should be gone")
	}
	if _, ok, _ := s.Lookup(ctx, "fresh", asset.KindStyle); !ok {
		t.Error("fresh artifact should remain")
	}

	// A keep-forever policy is a no-op.
	res, err = s.Purge(ctx, KeepForeverPolicy())
	if err != nil || res.Removed != 0 {
		t.Errorf("Purge(KeepForever) = (%+v, %v)", res, err)
	}
}

func TestFileStore_PurgeMissingDirs(t *testing.T) {
	s := newTestFileStore(t)
	res, err := s.Purge(context.Background(), DefaultRetentionPolicy())
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if res.Removed != 0 || res.Kept != 0 {
		t.Errorf("Purge() = %+v, want empty", res)
	}
}
