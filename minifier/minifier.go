// Package minifier wraps the style sheet and script minifiers and decides
// which assets are worth minifying.
package minifier

import (
	"errors"
	"fmt"
	"strings"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"

	"github.com/jonwraymond/assetops/asset"
)

// Media types registered with the underlying minifier.
const (
	MediaTypeCSS = "text/css"
	MediaTypeJS  = "application/javascript"
)

// ErrUnsupportedKind is returned for kinds without a minifier.
var ErrUnsupportedKind = errors.New("minifier: unsupported asset kind")

// Minifier transforms source text into a smaller equivalent. It performs no I/O.
type Minifier interface {
	Minify(kind asset.Kind, text string) (string, error)
}

// Func adapts a function to the Minifier interface.
type Func func(kind asset.Kind, text string) (string, error)

// Minify calls f(kind, text).
func (f Func) Minify(kind asset.Kind, text string) (string, error) {
	return f(kind, text)
}

// Standard minifies with tdewolff/minify.
type Standard struct {
	m *tdminify.M
}

// New creates a minifier for style sheets and scripts.
func New() *Standard {
	m := tdminify.New()
	m.Add(MediaTypeCSS, &css.Minifier{})
	m.Add(MediaTypeJS, &js.Minifier{})
	return &Standard{m: m}
}

// Minify minifies text as kind.
func (s *Standard) Minify(kind asset.Kind, text string) (string, error) {
	var mediaType string
	switch kind {
	case asset.KindStyle:
		mediaType = MediaTypeCSS
	case asset.KindScript:
		mediaType = MediaTypeJS
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
	}

	out, err := s.m.String(mediaType, text)
	if err != nil {
		return "", fmt.Errorf("minifier: %s: %w", kind, err)
	}
	return out, nil
}

// ShouldMinify reports whether id should be minified under cfg. It is true
// unless SkipMinified is set and id contains SkipMinifiedPattern.
func ShouldMinify(id string, cfg asset.Config) bool {
	if !cfg.SkipMinified || cfg.SkipMinifiedPattern == "" {
		return true
	}
	return !strings.Contains(id, cfg.SkipMinifiedPattern)
}

// Result is the outcome of Apply.
type Result struct {
	Text string

	// Minified is true when Text came out of the minifier.
	Minified bool

	// Err is the minifier error that forced a fallback to the original text.
	Err error
}

// Apply trims text and minifies it when compression is enabled for the kind
// and the skip policy allows it. A minifier failure falls back to the
// trimmed text and is reported in Result.Err.
func Apply(m Minifier, ref asset.Reference, text string, cfg asset.Config) Result {
	text = strings.TrimSpace(text)
	if m == nil || !cfg.For(ref.Kind).Compress || !ShouldMinify(ref.ID, cfg) {
		return Result{Text: text}
	}

	out, err := m.Minify(ref.Kind, text)
	if err != nil {
		return Result{Text: text, Err: err}
	}
	return Result{Text: out, Minified: true}
}

// Ensure implementations satisfy Minifier.
var (
	_ Minifier = (*Standard)(nil)
	_ Minifier = Func(nil)
)
