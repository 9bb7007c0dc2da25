// Package audit converts semantic security events into redacted,
// structured log entries.
//
// Severity is derived purely from the event type, and the human-readable
// message is a fixed per-type template interpolated with the endpoint
// path only. User-supplied values never reach the message, which blocks
// log injection and keeps authentication-failure messages identical
// regardless of why authentication failed.
//
// Details maps are sanitized recursively before logging: values under
// sensitive key names (password, token, api key, ...) are replaced with a
// redaction marker, and values that themselves look like credentials
// (bearer strings, long hex blobs, JWT shapes) are redacted even under
// innocent key names.
//
// Entries are written through an injected Sink, so tests can capture
// output without touching real stdout. The default sink writes one JSON
// object per line through log/slog at the mapped level.
package audit
