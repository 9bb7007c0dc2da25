// Package util provides small shared helpers used across the gatekit
// packages.
package util

// SafeTruncate truncates s to maxLen bytes without panicking. Used to
// keep unbounded client-supplied strings (user agents, header values)
// from bloating log entries. A negative maxLen returns an empty string.
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
