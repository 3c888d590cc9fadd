package asset

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSkipMinifiedPattern marks files that are already minified.
const DefaultSkipMinifiedPattern = ".min"

// DefaultReadTimeout bounds each remote read.
const DefaultReadTimeout = 2 * time.Second

// Configuration errors.
var (
	ErrMissingWebroot     = errors.New("asset: webroot is required")
	ErrEmptySkipPattern   = errors.New("asset: skip-minified pattern is empty")
	ErrInvalidReadTimeout = errors.New("asset: read timeout must be positive")
)

// KindConfig holds the toggles that apply to one asset kind.
type KindConfig struct {
	// Combine merges the group into a single bundle. When false the group
	// is returned untouched.
	Combine bool `json:"combine" yaml:"combine"`

	// Compress minifies each merged asset.
	Compress bool `json:"compress" yaml:"compress"`

	// RemoteEnable downloads absolute URLs and merges them into the bundle.
	// When false remote assets are passed through with their original tag.
	RemoteEnable bool `json:"remote_enable" yaml:"remote_enable"`
}

// Config is the full set of settings that influence a bundle.
//
// Config is part of the bundle fingerprint: changing any field yields a
// different artifact. It must be treated as read-only once handed to an engine.
type Config struct {
	// Enabled is the master switch for page-level optimization.
	Enabled bool `json:"enabled" yaml:"enabled"`

	Style  KindConfig `json:"style" yaml:"style"`
	Script KindConfig `json:"script" yaml:"script"`

	// SkipMinified leaves files whose identifier contains
	// SkipMinifiedPattern unminified.
	SkipMinified        bool   `json:"skip_minified" yaml:"skip_minified"`
	SkipMinifiedPattern string `json:"skip_minified_pattern" yaml:"skip_minified_pattern"`

	// StylesToBottom moves the style entries in front of the scripts
	// rendered at the end of the body.
	StylesToBottom bool `json:"styles_to_bottom" yaml:"styles_to_bottom"`

	// ReadTimeout bounds each remote read. Local reads are not bounded.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// Webroot is the directory local identifiers are resolved against.
	Webroot string `json:"webroot" yaml:"webroot"`
}

// DefaultConfig returns the default settings: everything combined and
// compressed, remote assets passed through, ".min" files left alone.
func DefaultConfig(webroot string) Config {
	return Config{
		Enabled:             true,
		Style:               KindConfig{Combine: true, Compress: true},
		Script:              KindConfig{Combine: true, Compress: true},
		SkipMinified:        true,
		SkipMinifiedPattern: DefaultSkipMinifiedPattern,
		ReadTimeout:         DefaultReadTimeout,
		Webroot:             webroot,
	}
}

// For returns the settings for kind.
func (c Config) For(kind Kind) KindConfig {
	if kind == KindScript {
		return c.Script
	}
	return c.Style
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Webroot == "" {
		return ErrMissingWebroot
	}
	if c.SkipMinified && c.SkipMinifiedPattern == "" {
		return ErrEmptySkipPattern
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidReadTimeout, c.ReadTimeout)
	}
	return nil
}
