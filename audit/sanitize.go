package audit

import "regexp"

// Redacted replaces sensitive values in logged details
const Redacted = "[REDACTED]"

// sensitiveKeyPattern matches key names whose values must never be
// logged, regardless of what the value looks like. The bare "auth"
// alternative is segment-bounded so keys that merely contain the
// substring, such as "author" or "oauth_provider", are left alone.
var sensitiveKeyPattern = regexp.MustCompile(
	`(?i)(password|passwd|secret|token|api[_-]?key|apikey|credential|authorization|bearer|cookie|session|jwt|private[_-]?key|card[_-]?number|cvv|ssn|(^|[_\-.])auth([_\-.]|$))`)

// Value-shape patterns: strings that look like credentials are redacted
// even under innocent key names.
var (
	bearerValuePattern = regexp.MustCompile(`(?i)^bearer\s+\S+`)
	hexBlobPattern     = regexp.MustCompile(`^[0-9a-fA-F]{32,}$`)
	jwtValuePattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{4,}$`)
)

// Sanitize returns a deep copy of details with sensitive data replaced by
// the redaction marker. Redaction is recursive through nested maps and
// slices: a sensitive key has its value replaced wholesale whatever its
// shape, and credential-shaped string values are redacted wherever they
// appear. The input map is never modified.
func Sanitize(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		if sensitiveKeyPattern.MatchString(k) {
			out[k] = Redacted
			continue
		}
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		if looksLikeCredential(val) {
			return Redacted
		}
		return val
	case map[string]any:
		return Sanitize(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	default:
		return v
	}
}

// looksLikeCredential reports whether a string value has a credential
// shape: bearer-prefixed, a long hex blob or a three-part JWT
func looksLikeCredential(s string) bool {
	return bearerValuePattern.MatchString(s) ||
		hexBlobPattern.MatchString(s) ||
		jwtValuePattern.MatchString(s)
}
