package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/assetops/asset"
	"github.com/jonwraymond/assetops/observe"
	"github.com/jonwraymond/assetops/secret"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assetops.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, "webroot: public\nstore:\n  root: public/assets\n")
	dir := filepath.Dir(path)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Asset.Webroot != filepath.Join(dir, "public") {
		t.Errorf("Webroot = %q", cfg.Asset.Webroot)
	}
	if cfg.Store.Root != filepath.Join(dir, "public/assets") {
		t.Errorf("Store.Root = %q", cfg.Store.Root)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q", cfg.Source)
	}

	def := asset.DefaultConfig(cfg.Asset.Webroot)
	if cfg.Asset != def {
		t.Errorf("Asset = %+v, want defaults %+v", cfg.Asset, def)
	}
	if cfg.Store.BaseURL != "/assets" || cfg.Store.Retention != 720*time.Hour {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if !cfg.Engine.SingleFlight || !cfg.Secrets.Strict {
		t.Errorf("Engine = %+v, Secrets = %+v", cfg.Engine, cfg.Secrets)
	}
	if cfg.Observe.ServiceName != ServiceName || !cfg.Observe.Logging.Enabled {
		t.Errorf("Observe = %+v", cfg.Observe)
	}
}

func TestLoad_Full(t *testing.T) {
	t.Setenv("ASSETOPS_TEST_ROOT", "/srv/www")
	t.Setenv("ASSETOPS_CDN_TOKEN", "tok")

	path := writeConfig(t, `
enabled: false
webroot: ${ASSETOPS_TEST_ROOT}
read_timeout: 5s
skip_minified: false
styles_to_bottom: true
style:
  combine: true
  compress: false
script:
  combine: true
  compress: true
  remote_enable: true
store:
  root: /var/cache/assets
  base_url: https://static.example.com/assets/
  precompress: true
  retention: 48h
remote:
  max_bytes: 1024
  headers:
    Authorization: Bearer secretref:env:CDN_TOKEN
    Accept: "*/*"
  retry:
    max_attempts: 3
    initial_delay: 50ms
secrets:
  env_prefix: ASSETOPS_
engine:
  single_flight: false
  fetch_concurrency: 4
  fingerprint_salt:
    release: "2024.10"
observe:
  service_name: assets-edge
  logging:
    enabled: true
    level: debug
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	a := cfg.Asset
	if a.Enabled || a.Webroot != "/srv/www" || a.ReadTimeout != 5*time.Second || a.SkipMinified || !a.StylesToBottom {
		t.Errorf("Asset = %+v", a)
	}
	if a.Style != (asset.KindConfig{Combine: true}) || a.Script != (asset.KindConfig{Combine: true, Compress: true, RemoteEnable: true}) {
		t.Errorf("kind settings = %+v / %+v", a.Style, a.Script)
	}
	if a.SkipMinifiedPattern != asset.DefaultSkipMinifiedPattern {
		t.Errorf("SkipMinifiedPattern = %q", a.SkipMinifiedPattern)
	}

	if got := cfg.Remote.Headers["Authorization"]; got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}

	rc := cfg.RemoteReaderConfig()
	if rc.Timeout != 5*time.Second || rc.MaxBytes != 1024 || rc.Retry.MaxAttempts != 3 || rc.Retry.InitialDelay != 50*time.Millisecond {
		t.Errorf("RemoteReaderConfig() = %+v", rc)
	}

	sc := cfg.FileStoreConfig()
	if sc.Root != "/var/cache/assets" || !sc.Precompress || sc.BaseURL != "https://static.example.com/assets/" {
		t.Errorf("FileStoreConfig() = %+v", sc)
	}
	if cfg.RetentionPolicy().MaxAge != 48*time.Hour {
		t.Errorf("RetentionPolicy() = %+v", cfg.RetentionPolicy())
	}
	if cfg.Engine.SingleFlight || cfg.Engine.FetchConcurrency != 4 || cfg.Engine.FingerprintSalt["release"] != "2024.10" {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Observe.ServiceName != "assets-edge" || cfg.Observe.Logging.Level != "debug" {
		t.Errorf("Observe = %+v", cfg.Observe)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "missing store root", body: "webroot: /srv\n", wantErr: ErrMissingStoreRoot},
		{name: "missing webroot", body: "store: {root: /tmp/a}\n", wantErr: asset.ErrMissingWebroot},
		{name: "bad timeout", body: "webroot: /srv\nread_timeout: 0s\nstore: {root: /tmp/a}\n", wantErr: asset.ErrInvalidReadTimeout},
		{name: "negative concurrency", body: "webroot: /srv\nstore: {root: /tmp/a}\nengine: {fetch_concurrency: -1}\n", wantErr: ErrInvalidFetchConcurrency},
		{name: "unset env", body: "webroot: ${ASSETOPS_UNSET_ROOT}\nstore: {root: /tmp/a}\n", wantErr: secret.ErrMissingEnv},
		{name: "unknown provider", body: "webroot: /srv\nstore: {root: /tmp/a}\nremote: {headers: {X: 'secretref:vault:k'}}\n", wantErr: secret.ErrUnknownProvider},
		{name: "bad log level", body: "webroot: /srv\nstore: {root: /tmp/a}\nobserve: {service_name: x, logging: {enabled: true, level: loud}}\n", wantErr: observe.ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeConfig(t, tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(context.Background(), writeConfig(t, "webroot: /srv\nstore: {root: /tmp/a}\ncompress_all: true\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want not exist", err)
	}
}

func TestLoad_FileSecrets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cdn-key"), []byte("k3y\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, "webroot: /srv\nstore: {root: /tmp/a}\nsecrets: {file_dir: "+dir+"}\nremote: {headers: {X-Api-Key: 'secretref:file:cdn-key'}}\n")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Remote.Headers["X-Api-Key"]; got != "k3y" {
		t.Errorf("X-Api-Key = %q", got)
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(context.Background(), nil, "")
	if !errors.Is(err, asset.ErrMissingWebroot) {
		t.Fatalf("error = %v, want ErrMissingWebroot", err)
	}
}

func TestConfig_NewEngine(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.css"), []byte("a { color: red }"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse(context.Background(), []byte("webroot: "+root+"\nstore: {root: "+filepath.Join(root, "assets")+"}\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	store, err := cfg.NewFileStore()
	if err != nil {
		t.Fatal(err)
	}
	e, err := cfg.NewEngine(store, observe.NopMiddleware())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	ref, _ := asset.NewReference(asset.KindStyle, "a.css", "")
	entries := e.OptimizeGroup(context.Background(), asset.KindStyle, asset.Group{ref})
	if len(entries) != 1 || entries[0].ID == "a.css" {
		t.Fatalf("entries = %+v, want bundle", entries)
	}
}

func TestConfig_FingerprinterSalt(t *testing.T) {
	ref, _ := asset.NewReference(asset.KindScript, "a.js", "")
	g := asset.Group{ref}
	a := asset.DefaultConfig("/srv")

	plain := Default()
	salted := Default()
	salted.Engine.FingerprintSalt = map[string]string{"release": "2"}

	fp1, err1 := plain.Fingerprinter().Fingerprint(asset.KindScript, g, a)
	fp2, err2 := salted.Fingerprinter().Fingerprint(asset.KindScript, g, a)
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}
	if fp1 == fp2 {
		t.Error("salt did not change the fingerprint")
	}
}
