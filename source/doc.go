// Package source reads the raw bytes of one asset.
//
// Local identifiers are resolved against a webroot and may not escape it.
// Remote identifiers are fetched over HTTP, each read bounded by a timeout and
// optionally retried with backoff. Every failure is reported as a *ReadError
// whose Kind tells NotFound, Unreadable, FetchError and Timeout apart; callers
// are expected to degrade gracefully on any of them.
package source
