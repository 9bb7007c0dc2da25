package gatekit

import (
	"fmt"
	"net/http"
)

// Error codes surfaced in rejection responses
const (
	ErrorCodeRateLimited      = "rate_limited"
	ErrorCodeUnauthorized     = "unauthorized"
	ErrorCodeForbidden        = "forbidden"
	ErrorCodeValidationFailed = "validation_failed"
	ErrorCodeMethodNotAllowed = "method_not_allowed"
	ErrorCodeInvalidPayload   = "invalid_payload"
)

// Fixed response messages for authentication and authorization failures.
// These are deliberately identical regardless of the underlying cause
// (wrong password, unknown user, expired token) so that responses cannot
// be used to enumerate accounts.
const (
	MessageUnauthorized = "Authentication required"
	MessageForbidden    = "Access denied"
)

// GateError represents a policy rejection produced by the security layer
type GateError struct {
	Code    string // stable machine-readable code (e.g. "rate_limited")
	Message string // human-readable description, safe for user display
	Status  int    // HTTP status code
}

// Error implements the error interface
func (e *GateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewGateError creates a new gate error
func NewGateError(code, message string, status int) *GateError {
	return &GateError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Common rejections as reusable instances
var (
	// ErrRateLimited indicates the caller exceeded its request quota
	ErrRateLimited = NewGateError(ErrorCodeRateLimited,
		"Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)

	// ErrUnauthorized indicates authentication failed. The message is fixed
	// and cause-independent; see MessageUnauthorized.
	ErrUnauthorized = NewGateError(ErrorCodeUnauthorized,
		MessageUnauthorized, http.StatusUnauthorized)

	// ErrForbidden indicates the authenticated caller lacks permission
	ErrForbidden = NewGateError(ErrorCodeForbidden,
		MessageForbidden, http.StatusForbidden)

	// ErrValidationFailed indicates request input did not conform to its schema
	ErrValidationFailed = NewGateError(ErrorCodeValidationFailed,
		"Request validation failed", http.StatusBadRequest)

	// ErrMethodNotAllowed indicates the HTTP method is not permitted on the endpoint
	ErrMethodNotAllowed = NewGateError(ErrorCodeMethodNotAllowed,
		"Method not allowed", http.StatusMethodNotAllowed)

	// ErrInvalidPayload indicates the request body could not be parsed at all
	ErrInvalidPayload = NewGateError(ErrorCodeInvalidPayload,
		"Request body is malformed", http.StatusBadRequest)
)
