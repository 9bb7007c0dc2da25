// Package instrumentation provides OpenTelemetry metrics and tracing for
// the security layer.
//
// Instrumentation is optional: when disabled (or when nil is passed to
// consumers), no-op providers are used and the overhead is zero. The
// pre-configured instruments cover rate limit decisions, counter store
// round trips, validation rejections and emitted audit events.
package instrumentation
