package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func TestLocalLimiter_Allow(t *testing.T) {
	l := NewLocalLimiter(10, 5, 0, nil)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("identity") {
			t.Errorf("request %d within burst should be allowed", i+1)
		}
	}
	if l.Allow("identity") {
		t.Error("request over burst should be rejected")
	}
}

func TestLocalLimiter_Allow_SeparateIdentities(t *testing.T) {
	l := NewLocalLimiter(10, 2, 0, nil)
	defer l.Stop()

	l.Allow("a")
	l.Allow("a")
	if l.Allow("a") {
		t.Error("identity a should be limited")
	}
	if !l.Allow("b") {
		t.Error("identity b should not be affected")
	}
}

func TestLocalLimiter_LRUEviction(t *testing.T) {
	l := NewLocalLimiter(10, 10, 2, nil)
	defer l.Stop()

	l.Allow("a")
	l.Allow("b")
	l.Allow("c") // evicts a

	stats := l.Stats()
	if stats.CurrentEntries != 2 {
		t.Errorf("CurrentEntries = %d, want 2", stats.CurrentEntries)
	}
	if stats.TotalEvictions != 1 {
		t.Errorf("TotalEvictions = %d, want 1", stats.TotalEvictions)
	}
	if stats.MaxEntries != 2 {
		t.Errorf("MaxEntries = %d, want 2", stats.MaxEntries)
	}
}

func TestLocalLimiter_LRUKeepsActive(t *testing.T) {
	l := NewLocalLimiter(100, 100, 2, nil)
	defer l.Stop()

	l.Allow("a")
	l.Allow("b")
	l.Allow("a") // a becomes most recently used
	l.Allow("c") // evicts b, not a

	l.mu.Lock()
	_, hasA := l.entries["a"]
	_, hasB := l.entries["b"]
	l.mu.Unlock()

	if !hasA {
		t.Error("recently used identity a should survive eviction")
	}
	if hasB {
		t.Error("least recently used identity b should be evicted")
	}
}

func TestLocalLimiter_Cleanup(t *testing.T) {
	l := NewLocalLimiter(10, 10, 0, nil)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("id-%d", i))
	}
	if got := l.Stats().CurrentEntries; got != 5 {
		t.Fatalf("CurrentEntries = %d, want 5", got)
	}

	// Everything is idle relative to a zero max idle time
	l.Cleanup(0)
	if got := l.Stats().CurrentEntries; got != 0 {
		t.Errorf("CurrentEntries after cleanup = %d, want 0", got)
	}
}

func TestLocalLimiter_RefillOverTime(t *testing.T) {
	l := NewLocalLimiter(100, 1, 0, nil)
	defer l.Stop()

	if !l.Allow("id") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("id") {
		t.Fatal("second immediate request should be rejected")
	}

	time.Sleep(20 * time.Millisecond) // 100 rps refills within 10ms
	if !l.Allow("id") {
		t.Error("request after refill should be allowed")
	}
}
