// Package testutil provides testing utilities for the gatekit packages.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/quillcms/gatekit/audit"
)

// MockTime provides a controllable time source for deterministic testing
type MockTime struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockTime creates a new mock time provider
func NewMockTime(t time.Time) *MockTime {
	return &MockTime{now: t}
}

// Now returns the current mock time
func (m *MockTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock time forward by the given duration
func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// CaptureSink records audit entries in order for later assertions
type CaptureSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

// Write implements audit.Sink
func (c *CaptureSink) Write(e audit.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

// Entries returns a copy of everything written so far, in write order
func (c *CaptureSink) Entries() []audit.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]audit.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Last returns the most recent entry, or a zero entry when none exist
func (c *CaptureSink) Last() audit.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return audit.Entry{}
	}
	return c.entries[len(c.entries)-1]
}

// ScriptedStore is a counter store whose responses are fixed up front.
// It satisfies ratelimit.CounterStore and lets tests force exact
// pre-insert counts or store failures without a real backend.
type ScriptedStore struct {
	// Count is returned from every Slide call
	Count int64

	// SlideErr and RemoveErr, when set, are returned from the
	// corresponding calls
	SlideErr  error
	RemoveErr error
}

// Slide returns the scripted count and error
func (s *ScriptedStore) Slide(context.Context, string, int64, string, int64, time.Duration) (int64, error) {
	return s.Count, s.SlideErr
}

// Remove returns the scripted error
func (s *ScriptedStore) Remove(context.Context, string, string) error {
	return s.RemoveErr
}

// NewTestLogger returns a slog logger that discards output
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
