package audit

// EventType enumerates the security event classes the layer can emit
type EventType string

const (
	// EventAuthFailure is emitted when authentication fails for any reason
	EventAuthFailure EventType = "auth_failure"

	// EventAuthzFailure is emitted when an authenticated caller is denied access
	EventAuthzFailure EventType = "authz_failure"

	// EventRateLimit is emitted when a caller exceeds its request quota
	EventRateLimit EventType = "rate_limit"

	// EventValidationError is emitted when request input fails validation
	EventValidationError EventType = "validation_error"

	// EventSuspiciousActivity is emitted for behavior worth investigating
	// (SSRF attempts, spoofed uploads, probing)
	EventSuspiciousActivity EventType = "suspicious_activity"
)

// Severity is the log level assigned to an event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Severity maps an event type to its log level. Authentication,
// authorization and rate-limit failures are warnings, validation errors
// informational, suspicious activity an error.
func (t EventType) Severity() Severity {
	switch t {
	case EventAuthFailure, EventAuthzFailure, EventRateLimit:
		return SeverityWarning
	case EventSuspiciousActivity:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Message renders the fixed per-type template for the given endpoint.
// Only the endpoint path is interpolated; the template never varies with
// the failure cause, so distinct causes are indistinguishable in logs.
func (t EventType) Message(endpoint string) string {
	switch t {
	case EventAuthFailure:
		return "Authentication failed for request to " + endpoint
	case EventAuthzFailure:
		return "Authorization denied for request to " + endpoint
	case EventRateLimit:
		return "Rate limit exceeded for request to " + endpoint
	case EventValidationError:
		return "Request validation failed for " + endpoint
	case EventSuspiciousActivity:
		return "Suspicious activity detected on " + endpoint
	default:
		return "Security event on " + endpoint
	}
}
