package observe

import "time"

// BundleMeta describes the group an optimization pass works on.
type BundleMeta struct {
	Kind        string // "css" or "js"
	Fingerprint string // empty until computed
	Position    string // page position, optional
	Entries     int    // number of references in the group
}

// SpanName returns the span name for this bundle kind.
// Format: asset.optimize.<kind>
func (m BundleMeta) SpanName() string {
	if m.Kind == "" {
		return "asset.optimize"
	}
	return "asset.optimize." + m.Kind
}

// Outcome classifies how a group pass ended.
type Outcome string

const (
	// OutcomeHit means an existing bundle was reused.
	OutcomeHit Outcome = "hit"
	// OutcomeBuilt means a new bundle was written.
	OutcomeBuilt Outcome = "built"
	// OutcomeFallback means the original references were returned after a failure.
	OutcomeFallback Outcome = "fallback"
	// OutcomePassThrough means nothing was eligible for bundling.
	OutcomePassThrough Outcome = "pass_through"
)

// Record is the result of one group pass as seen by instrumentation.
type Record struct {
	Outcome     Outcome
	Fingerprint string
	Duration    time.Duration
	Bytes       int
	Component   string // failing component on fallback
	Err         error
}
