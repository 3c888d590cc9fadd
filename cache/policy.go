package cache

import "time"

// RetentionPolicy decides when an artifact is stale enough to purge.
//
// The engine never evicts on its own: bundles are immutable and a changed
// input set produces a new fingerprint, so old artifacts pile up until an
// operator runs Purge with a policy.
type RetentionPolicy struct {
	// MaxAge is the age after which an artifact is purged.
	// If zero, nothing is purged.
	MaxAge time.Duration
}

// DefaultRetentionPolicy returns the default retention policy.
// MaxAge: 30 days
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{MaxAge: 30 * 24 * time.Hour}
}

// KeepForeverPolicy returns a policy that never purges.
func KeepForeverPolicy() RetentionPolicy {
	return RetentionPolicy{}
}

// ShouldPurge returns true if this policy purges anything at all.
func (p RetentionPolicy) ShouldPurge() bool {
	return p.MaxAge > 0
}

// Expired reports whether an artifact last modified at modTime is stale at now.
func (p RetentionPolicy) Expired(modTime, now time.Time) bool {
	if !p.ShouldPurge() {
		return false
	}
	return now.Sub(modTime) > p.MaxAge
}

// PurgeResult summarizes a purge run.
type PurgeResult struct {
	Removed int
	Kept    int
	Bytes   int64
}
