// Package validate contains the request-input validators of the security
// layer: an SSRF-safe URL validator, a magic-byte file upload validator
// and a schema/pagination validator.
//
// All entry points return result values rather than errors for expected
// failure modes; malformed input is a rejection, not a crash. No validator
// keeps mutable state, so values are safe for concurrent use.
package validate
