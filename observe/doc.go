// Package observe provides logging, metrics and tracing for bundle optimization.
//
// It is a pure instrumentation library: the optimizer hands it a BundleMeta
// describing the group being processed and a Record describing the outcome,
// and it turns them into JSON log lines, OpenTelemetry spans and counters.
package observe
