package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/quillcms/gatekit/internal/util"
)

// maxUserAgentLen bounds the user agent string carried into log entries
const maxUserAgentLen = 256

// Event is a semantic security event as observed at a request boundary.
// Events are transient; construct one per occurrence.
type Event struct {
	Type       EventType
	Endpoint   string
	Method     string
	StatusCode int
	UserID     string
	IP         string
	UserAgent  string
	Details    map[string]any
	Timestamp  time.Time // filled by the logger when zero
}

// Entry is the stable JSON shape written to the log sink, one object per
// line. Details are already sanitized by the time an Entry exists.
type Entry struct {
	Timestamp  string         `json:"timestamp"`
	Level      string         `json:"level"`
	EventType  string         `json:"eventType"`
	Endpoint   string         `json:"endpoint"`
	Message    string         `json:"message"`
	Method     string         `json:"method,omitempty"`
	StatusCode int            `json:"statusCode,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// Sink receives finished log entries. Writes are fire-and-forget from the
// caller's perspective but must not drop or reorder entries within a
// process.
type Sink interface {
	Write(Entry)
}

// SlogSink writes entries through a slog logger at the mapped level
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink over the given logger, or slog.Default()
// when nil
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Write implements Sink
func (s *SlogSink) Write(e Entry) {
	attrs := []any{
		"eventType", e.EventType,
		"endpoint", e.Endpoint,
		"timestamp", e.Timestamp,
	}
	if e.Method != "" {
		attrs = append(attrs, "method", e.Method)
	}
	if e.StatusCode != 0 {
		attrs = append(attrs, "statusCode", e.StatusCode)
	}
	if e.UserID != "" {
		attrs = append(attrs, "userId", e.UserID)
	}
	if e.IP != "" {
		attrs = append(attrs, "ip", e.IP)
	}
	if e.UserAgent != "" {
		attrs = append(attrs, "userAgent", e.UserAgent)
	}
	if e.Details != nil {
		attrs = append(attrs, "details", e.Details)
	}

	switch Severity(e.Level) {
	case SeverityError:
		s.logger.Error(e.Message, attrs...)
	case SeverityWarning:
		s.logger.Warn(e.Message, attrs...)
	default:
		s.logger.Info(e.Message, attrs...)
	}
}

// Logger converts events into redacted entries and hands them to a sink.
// Loggers hold no mutable state and are safe for concurrent use.
type Logger struct {
	sink Sink

	// Test seam; defaults to time.Now
	now func() time.Time
}

// NewLogger creates an event logger writing to sink, or to a default
// slog sink when nil
func NewLogger(sink Sink) *Logger {
	if sink == nil {
		sink = NewSlogSink(nil)
	}
	return &Logger{sink: sink, now: time.Now}
}

// Entry builds the sanitized log entry for an event without writing it
func (l *Logger) Entry(ev Event) Entry {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = l.now()
	}
	return Entry{
		Timestamp:  ts.UTC().Format(time.RFC3339Nano),
		Level:      string(ev.Type.Severity()),
		EventType:  string(ev.Type),
		Endpoint:   ev.Endpoint,
		Message:    ev.Type.Message(ev.Endpoint),
		Method:     ev.Method,
		StatusCode: ev.StatusCode,
		UserID:     ev.UserID,
		IP:         ev.IP,
		UserAgent:  util.SafeTruncate(ev.UserAgent, maxUserAgentLen),
		Details:    Sanitize(ev.Details),
	}
}

// Format renders the event as a single-line JSON object
func (l *Logger) Format(ev Event) string {
	b, err := json.Marshal(l.Entry(ev))
	if err != nil {
		// Entry is a plain struct of marshalable types; this cannot
		// happen with well-formed details.
		return `{"level":"error","message":"failed to encode security event"}`
	}
	return string(b)
}

// Log sanitizes, formats and writes the event to the sink
func (l *Logger) Log(ev Event) {
	l.sink.Write(l.Entry(ev))
}

// LogAuthFailure records a failed authentication attempt. The entry is
// identical for every failure cause.
func (l *Logger) LogAuthFailure(endpoint, ip, userAgent string) {
	l.Log(Event{
		Type:       EventAuthFailure,
		Endpoint:   endpoint,
		StatusCode: 401,
		IP:         ip,
		UserAgent:  userAgent,
	})
}

// LogRateLimit records a rejected request with its limit context
func (l *Logger) LogRateLimit(endpoint, method, ip string, limit int) {
	l.Log(Event{
		Type:       EventRateLimit,
		Endpoint:   endpoint,
		Method:     method,
		StatusCode: 429,
		IP:         ip,
		Details:    map[string]any{"limit": limit},
	})
}

// LogValidationError records a schema or content validation failure
func (l *Logger) LogValidationError(endpoint, method string, details map[string]any) {
	l.Log(Event{
		Type:     EventValidationError,
		Endpoint: endpoint,
		Method:   method,
		Details:  details,
	})
}

// LogSuspiciousActivity records behavior worth investigating
func (l *Logger) LogSuspiciousActivity(endpoint, ip string, details map[string]any) {
	l.Log(Event{
		Type:     EventSuspiciousActivity,
		Endpoint: endpoint,
		IP:       ip,
		Details:  details,
	})
}

// HashForLogging creates a short SHA-256 digest of a sensitive identifier
// so occurrences can be correlated across entries without logging the
// identifier itself
func HashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	sum := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(sum[:])[:16]
}
