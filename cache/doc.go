// Package cache stores bundles under content-addressed names.
//
// It provides the Fingerprinter that derives a bundle key from an ordered set
// of asset identifiers plus the active configuration, the Store interface with
// an on-disk FileStore (atomic temp-file-and-rename writes, versioned public
// URLs) and an in-memory MemoryStore, and a RetentionPolicy for external
// cleanup of stale artifacts.
package cache
