package asset

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// Sentinel errors for asset construction.
var (
	ErrEmptyID     = errors.New("asset: identifier is empty")
	ErrUnknownKind = errors.New("asset: unknown kind")
)

// Kind identifies the type of an asset.
type Kind int

const (
	// KindStyle is a style sheet.
	KindStyle Kind = iota
	// KindScript is a script.
	KindScript
)

// String returns the short name used in storage paths ("css" or "js").
func (k Kind) String() string {
	switch k {
	case KindStyle:
		return "css"
	case KindScript:
		return "js"
	default:
		return "unknown"
	}
}

// Ext returns the file extension for bundles of this kind.
func (k Kind) Ext() string {
	return k.String()
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindStyle || k == KindScript
}

// ParseKind parses "css"/"style" or "js"/"script".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "css", "style":
		return KindStyle, nil
	case "js", "script":
		return KindScript, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Reference is one asset as declared by the page.
//
// ID is both the de-duplication key and the origin locator: a path relative
// to the webroot or an absolute URL. Tag is the original markup, emitted
// verbatim whenever the asset is passed through.
type Reference struct {
	ID   string
	Kind Kind
	Tag  string
}

// NewReference creates a reference, rendering the default tag when tag is empty.
func NewReference(kind Kind, id, tag string) (Reference, error) {
	if strings.TrimSpace(id) == "" {
		return Reference{}, ErrEmptyID
	}
	if !kind.Valid() {
		return Reference{}, ErrUnknownKind
	}
	if tag == "" {
		tag = RenderTag(kind, id)
	}
	return Reference{ID: id, Kind: kind, Tag: tag}, nil
}

// IsLocal reports whether the identifier is a path relative to the webroot.
// Absolute URLs with a scheme and protocol-relative URLs ("//cdn/x.js") are remote.
func (r Reference) IsLocal() bool {
	return IsRelative(r.ID)
}

// Entry converts the reference into an output entry.
func (r Reference) Entry() Entry {
	return Entry{ID: r.ID, Tag: r.Tag}
}

// IsRelative reports whether u carries neither a scheme nor a host.
func IsRelative(u string) bool {
	if strings.HasPrefix(u, "//") {
		return false
	}
	return !strings.Contains(u, "://")
}

// StripQuery removes a "?query" suffix. A leading "?" is kept as is.
func StripQuery(id string) string {
	if i := strings.IndexByte(id, '?'); i > 0 {
		return id[:i]
	}
	return id
}

// Group is an ordered run of references of one kind at one render position.
type Group []Reference

// IDs returns the identifiers in order.
func (g Group) IDs() []string {
	ids := make([]string, len(g))
	for i, r := range g {
		ids[i] = r.ID
	}
	return ids
}

// WithKind returns a copy of the group with every reference set to kind.
func (g Group) WithKind(kind Kind) Group {
	out := make(Group, len(g))
	for i, r := range g {
		r.Kind = kind
		out[i] = r
	}
	return out
}

// Entries converts the group into output entries, unchanged.
func (g Group) Entries() []Entry {
	out := make([]Entry, len(g))
	for i, r := range g {
		out[i] = r.Entry()
	}
	return out
}

// Entry is one line of the replacement list handed back to the page:
// an identifier (original or bundle URL) and the markup to emit for it.
type Entry struct {
	ID  string
	Tag string
}

// RenderTag renders the default markup for an asset URL.
func RenderTag(kind Kind, url string) string {
	escaped := html.EscapeString(url)
	if kind == KindStyle {
		return `<link href="` + escaped + `" rel="stylesheet">`
	}
	return `<script src="` + escaped + `"></script>`
}
