package health

import (
	"context"
	"fmt"
	"os"

	"github.com/jonwraymond/assetops/asset"
	"github.com/jonwraymond/assetops/cache"
)

// StoreChecker verifies each bundle directory can be created and written.
// It writes and removes a probe file; bundles are left untouched.
type StoreChecker struct {
	dirs []string
}

// NewStoreChecker checks the style and script directories of store.
func NewStoreChecker(store *cache.FileStore) *StoreChecker {
	return &StoreChecker{dirs: []string{store.Dir(asset.KindStyle), store.Dir(asset.KindScript)}}
}

// Name returns "store".
func (c *StoreChecker) Name() string { return "store" }

// Check probes every directory. A directory that does not exist yet is
// created, as the store would on first write.
func (c *StoreChecker) Check(ctx context.Context) Result {
	details := make(map[string]any, len(c.dirs))
	for _, dir := range c.dirs {
		if err := ctx.Err(); err != nil {
			return Unhealthy("store check canceled", err)
		}
		if err := probe(dir); err != nil {
			details[dir] = err.Error()
			return Unhealthy(fmt.Sprintf("bundle directory %s is not writable", dir), err).WithDetails(details)
		}
		details[dir] = "writable"
	}
	return Healthy("bundle directories writable").WithDetails(details)
}

func probe(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_, werr := f.Write([]byte("ok"))
	cerr := f.Close()
	rerr := os.Remove(name)
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return cerr
	}
	return rerr
}

// WebrootChecker verifies the source root exists and is a readable directory.
type WebrootChecker struct {
	root string
}

// NewWebrootChecker creates a checker for root.
func NewWebrootChecker(root string) *WebrootChecker {
	return &WebrootChecker{root: root}
}

// Name returns "webroot".
func (c *WebrootChecker) Name() string { return "webroot" }

// Check opens the root directory. An empty directory is reported as degraded.
func (c *WebrootChecker) Check(_ context.Context) Result {
	info, err := os.Stat(c.root)
	if err != nil {
		return Unhealthy("webroot unavailable", err)
	}
	if !info.IsDir() {
		return Unhealthy("webroot is not a directory", fmt.Errorf("%w: %s", ErrNotDirectory, c.root))
	}
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return Unhealthy("webroot unreadable", err)
	}
	if len(entries) == 0 {
		return Degraded("webroot is empty").WithDetails(map[string]any{"path": c.root})
	}
	return Healthy("webroot readable").WithDetails(map[string]any{"path": c.root, "entries": len(entries)})
}

var (
	_ Checker = (*StoreChecker)(nil)
	_ Checker = (*WebrootChecker)(nil)
)
