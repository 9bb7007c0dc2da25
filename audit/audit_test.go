package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordSink collects entries in order
type recordSink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *recordSink) Write(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func TestEventType_Severity(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      Severity
	}{
		{EventAuthFailure, SeverityWarning},
		{EventAuthzFailure, SeverityWarning},
		{EventRateLimit, SeverityWarning},
		{EventValidationError, SeverityInfo},
		{EventSuspiciousActivity, SeverityError},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := tt.eventType.Severity(); got != tt.want {
				t.Errorf("Severity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventType_Message_EndpointOnly(t *testing.T) {
	msg := EventAuthFailure.Message("/api/auth/login")
	if !strings.Contains(msg, "/api/auth/login") {
		t.Errorf("message should contain the endpoint, got %q", msg)
	}
}

func TestLogger_Entry(t *testing.T) {
	l := NewLogger(&recordSink{})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	entry := l.Entry(Event{
		Type:       EventRateLimit,
		Endpoint:   "/api/posts",
		Method:     "GET",
		StatusCode: 429,
		IP:         "203.0.113.7",
		Details:    map[string]any{"limit": 100, "token": "tok-123"},
	})

	if entry.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("Timestamp = %q", entry.Timestamp)
	}
	if entry.Level != "warning" {
		t.Errorf("Level = %q, want warning", entry.Level)
	}
	if entry.EventType != "rate_limit" {
		t.Errorf("EventType = %q", entry.EventType)
	}
	if entry.Details["token"] != Redacted {
		t.Error("details must be sanitized in the entry")
	}
	if entry.Details["limit"] != 100 {
		t.Errorf("details limit = %v, want preserved", entry.Details["limit"])
	}
}

func TestLogger_Format_SingleLineJSON(t *testing.T) {
	l := NewLogger(&recordSink{})

	line := l.Format(Event{
		Type:     EventSuspiciousActivity,
		Endpoint: "/api/media",
		IP:       "203.0.113.7",
		Details:  map[string]any{"reason": "spoofed upload", "password": "hunter2"},
	})

	if strings.Contains(line, "\n") {
		t.Error("formatted entry must be a single line")
	}
	if strings.Contains(line, "hunter2") {
		t.Error("formatted entry must not contain the sensitive value")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("formatted entry is not valid JSON: %v", err)
	}
	if decoded["level"] != "error" {
		t.Errorf("level = %v, want error", decoded["level"])
	}
	if decoded["eventType"] != "suspicious_activity" {
		t.Errorf("eventType = %v", decoded["eventType"])
	}
	if decoded["endpoint"] != "/api/media" {
		t.Errorf("endpoint = %v", decoded["endpoint"])
	}
}

func TestLogger_AuthFailureUniform(t *testing.T) {
	// Two different failure causes must produce indistinguishable entries,
	// otherwise responses can be used to enumerate accounts.
	sink := &recordSink{}
	l := NewLogger(sink)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	// wrong password
	l.LogAuthFailure("/api/auth/login", "203.0.113.7", "curl/8.0")
	// unknown user
	l.LogAuthFailure("/api/auth/login", "203.0.113.7", "curl/8.0")

	if len(sink.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(sink.entries))
	}
	a, _ := json.Marshal(sink.entries[0])
	b, _ := json.Marshal(sink.entries[1])
	if string(a) != string(b) {
		t.Errorf("auth failure entries differ:\n%s\n%s", a, b)
	}
}

func TestLogger_SinkOrdering(t *testing.T) {
	sink := &recordSink{}
	l := NewLogger(sink)

	for i := 0; i < 10; i++ {
		l.Log(Event{Type: EventValidationError, Endpoint: fmt.Sprintf("/e/%d", i)})
	}

	for i, e := range sink.entries {
		if want := fmt.Sprintf("/e/%d", i); e.Endpoint != want {
			t.Fatalf("entry %d endpoint = %q, want %q (reordered)", i, e.Endpoint, want)
		}
	}
}

func TestLogger_UserAgentTruncated(t *testing.T) {
	l := NewLogger(&recordSink{})
	entry := l.Entry(Event{
		Type:      EventAuthFailure,
		Endpoint:  "/login",
		UserAgent: strings.Repeat("A", 5000),
	})
	if len(entry.UserAgent) > 256 {
		t.Errorf("UserAgent length = %d, want bounded", len(entry.UserAgent))
	}
}

func TestHashForLogging(t *testing.T) {
	if HashForLogging("") != "<empty>" {
		t.Error("empty input should map to the empty marker")
	}

	h1 := HashForLogging("user-42")
	h2 := HashForLogging("user-42")
	h3 := HashForLogging("user-43")

	if h1 != h2 {
		t.Error("hash must be deterministic")
	}
	if h1 == h3 {
		t.Error("different inputs should hash differently")
	}
	if len(h1) != 16 {
		t.Errorf("hash length = %d, want 16", len(h1))
	}
	if strings.Contains(h1, "user-42") {
		t.Error("hash must not contain the original value")
	}
}
