package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/assetops/asset"
	"github.com/jonwraymond/assetops/cache"
	"github.com/jonwraymond/assetops/observe"
	"github.com/jonwraymond/assetops/secret"
	"github.com/jonwraymond/assetops/source"
)

// ServiceName is the default telemetry service name.
const ServiceName = "assetops"

// Configuration errors.
var (
	ErrMissingStoreRoot        = errors.New("config: store root is required")
	ErrInvalidFetchConcurrency = errors.New("config: fetch concurrency must not be negative")
	ErrInvalidMaxBytes         = errors.New("config: remote max bytes must not be negative")
)

// Config is the complete file-level configuration.
type Config struct {
	// Asset holds the settings that take part in bundle fingerprints.
	Asset asset.Config `yaml:",inline"`

	Store   StoreConfig    `yaml:"store"`
	Remote  RemoteConfig   `yaml:"remote"`
	Engine  EngineConfig   `yaml:"engine"`
	Secrets SecretsConfig  `yaml:"secrets"`
	Observe observe.Config `yaml:"observe"`

	// Source is the file the configuration was loaded from, if any.
	Source string `yaml:"-"`
}

// StoreConfig configures the bundle file store.
type StoreConfig struct {
	Root        string `yaml:"root"`
	BaseURL     string `yaml:"base_url"`
	Precompress bool   `yaml:"precompress"`
	GzipLevel   int    `yaml:"gzip_level"`

	// Retention is the age after which purge removes a bundle. Zero keeps
	// bundles forever.
	// Default: 720h
	Retention time.Duration `yaml:"retention"`
}

// RemoteConfig configures remote reads.
type RemoteConfig struct {
	// Timeout overrides the asset read timeout for remote reads.
	Timeout  time.Duration     `yaml:"timeout"`
	MaxBytes int64             `yaml:"max_bytes"`
	Headers  map[string]string `yaml:"headers"`
	Retry    RetryConfig       `yaml:"retry"`
}

// RetryConfig configures retries of transient remote failures.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Jitter       bool          `yaml:"jitter"`
}

// EngineConfig holds engine options that do not affect bundle content.
type EngineConfig struct {
	SingleFlight     bool `yaml:"single_flight"`
	FetchConcurrency int  `yaml:"fetch_concurrency"`

	// FingerprintSalt is mixed into every fingerprint. Changing it
	// invalidates all bundles, e.g. on deploy.
	FingerprintSalt map[string]string `yaml:"fingerprint_salt"`
}

// SecretsConfig configures the providers available to secretref values.
type SecretsConfig struct {
	// EnvPrefix is prepended to secretref:env references.
	EnvPrefix string `yaml:"env_prefix"`

	// FileDir enables secretref:file references read from this directory.
	FileDir string `yaml:"file_dir"`

	// Strict rejects references that resolve to an empty value.
	// Default: true
	Strict bool `yaml:"strict"`
}

// Default returns the configuration used for every omitted setting.
func Default() Config {
	return Config{
		Asset: asset.DefaultConfig(""),
		Store: StoreConfig{
			BaseURL:   "/assets",
			Retention: cache.DefaultRetentionPolicy().MaxAge,
		},
		Engine:  EngineConfig{SingleFlight: true},
		Secrets: SecretsConfig{Strict: true},
		Observe: observe.DefaultConfig(ServiceName),
	}
}

// Load reads, expands, resolves and validates the file at path.
// Relative webroot, store root and secret directory paths are taken
// relative to the file's directory.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(ctx, data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Parse decodes data over Default. Unknown keys are rejected.
func Parse(ctx context.Context, data []byte, baseDir string) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if err := cfg.expand(baseDir); err != nil {
		return nil, err
	}

	headers, err := cfg.Resolver().ResolveMap(ctx, cfg.Remote.Headers)
	if err != nil {
		return nil, fmt.Errorf("remote headers: %w", err)
	}
	cfg.Remote.Headers = headers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expand(baseDir string) error {
	fields := []struct {
		name  string
		value *string
		path  bool
	}{
		{"webroot", &c.Asset.Webroot, true},
		{"store.root", &c.Store.Root, true},
		{"store.base_url", &c.Store.BaseURL, false},
		{"secrets.file_dir", &c.Secrets.FileDir, true},
	}
	for _, f := range fields {
		v, err := secret.ExpandEnvStrict(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		if f.path && v != "" && !filepath.IsAbs(v) && baseDir != "" {
			v = filepath.Join(baseDir, v)
		}
		*f.value = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Asset.Validate(); err != nil {
		return err
	}
	if c.Store.Root == "" {
		return ErrMissingStoreRoot
	}
	if c.Engine.FetchConcurrency < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFetchConcurrency, c.Engine.FetchConcurrency)
	}
	if c.Remote.MaxBytes < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxBytes, c.Remote.MaxBytes)
	}
	return c.Observe.Validate()
}

// Resolver returns a secret resolver with the configured providers.
func (c *Config) Resolver() *secret.Resolver {
	r := secret.NewResolver(c.Secrets.Strict, secret.EnvProvider{Prefix: c.Secrets.EnvPrefix})
	if c.Secrets.FileDir != "" {
		r.Register(secret.FileProvider{Dir: c.Secrets.FileDir})
	}
	return r
}

// FileStoreConfig returns the file store settings.
func (c *Config) FileStoreConfig() cache.FileStoreConfig {
	return cache.FileStoreConfig{
		Root:        c.Store.Root,
		BaseURL:     c.Store.BaseURL,
		Precompress: c.Store.Precompress,
		GzipLevel:   c.Store.GzipLevel,
	}
}

// RetentionPolicy returns the purge policy.
func (c *Config) RetentionPolicy() cache.RetentionPolicy {
	return cache.RetentionPolicy{MaxAge: c.Store.Retention}
}

// RemoteReaderConfig returns the remote reader settings. The timeout falls
// back to the asset read timeout.
func (c *Config) RemoteReaderConfig() source.RemoteConfig {
	timeout := c.Remote.Timeout
	if timeout <= 0 {
		timeout = c.Asset.ReadTimeout
	}
	return source.RemoteConfig{
		Timeout:  timeout,
		MaxBytes: c.Remote.MaxBytes,
		Headers:  c.Remote.Headers,
		Retry: source.RetryConfig{
			MaxAttempts:  c.Remote.Retry.MaxAttempts,
			InitialDelay: c.Remote.Retry.InitialDelay,
			MaxDelay:     c.Remote.Retry.MaxDelay,
			Jitter:       c.Remote.Retry.Jitter,
		},
	}
}
