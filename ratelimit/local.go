package ratelimit

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// localEntry tracks a token bucket and its last access time
type localEntry struct {
	identity   string
	bucket     *rate.Limiter
	lastAccess time.Time
}

// LocalLimiter is an in-process per-identity token-bucket limiter with
// LRU eviction, for hosts that run without a counter store. Unlike
// Limiter it is not shared across processes and approximates the window
// with bucket refill rather than exact sliding counts.
type LocalLimiter struct {
	entries    map[string]*list.Element // identity -> list element
	lru        *list.List               // LRU list of *localEntry
	mu         sync.Mutex
	rps        rate.Limit
	burst      int
	maxEntries int
	logger     *slog.Logger

	cleanupEvery time.Duration
	stopCleanup  chan struct{}

	totalEvictions int64
}

// DefaultLocalMaxEntries bounds tracked identities so a distributed
// attack cannot grow memory without limit.
const DefaultLocalMaxEntries = 10000

// NewLocalLimiter creates an in-process limiter admitting requestsPerSecond
// sustained with the given burst, tracking at most maxEntries identities
// (0 means DefaultLocalMaxEntries). A background janitor drops identities
// idle for 30 minutes; call Stop when discarding the limiter.
func NewLocalLimiter(requestsPerSecond float64, burst, maxEntries int, logger *slog.Logger) *LocalLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = DefaultLocalMaxEntries
	}

	l := &LocalLimiter{
		entries:      make(map[string]*list.Element),
		lru:          list.New(),
		rps:          rate.Limit(requestsPerSecond),
		burst:        burst,
		maxEntries:   maxEntries,
		logger:       logger,
		cleanupEvery: 5 * time.Minute,
		stopCleanup:  make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow reports whether a request from the given identity may proceed
func (l *LocalLimiter) Allow(identity string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.entries[identity]; ok {
		l.lru.MoveToFront(elem)
		entry := elem.Value.(*localEntry)
		entry.lastAccess = now
		return entry.bucket.Allow()
	}

	if len(l.entries) >= l.maxEntries {
		l.evictOldest()
	}

	entry := &localEntry{
		identity:   identity,
		bucket:     rate.NewLimiter(l.rps, l.burst),
		lastAccess: now,
	}
	l.entries[identity] = l.lru.PushFront(entry)

	return entry.bucket.Allow()
}

// evictOldest removes the least recently used identity.
// Must be called with the mutex held.
func (l *LocalLimiter) evictOldest() {
	elem := l.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*localEntry)
	delete(l.entries, entry.identity)
	l.lru.Remove(elem)
	l.totalEvictions++

	l.logger.Debug("local limiter evicted identity",
		"identity", entry.identity,
		"total_evictions", l.totalEvictions)
}

func (l *LocalLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup(30 * time.Minute)
		case <-l.stopCleanup:
			return
		}
	}
}

// Cleanup drops identities idle for longer than maxIdle
func (l *LocalLimiter) Cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	var next *list.Element
	for elem := l.lru.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*localEntry)
		if now.Sub(entry.lastAccess) > maxIdle {
			delete(l.entries, entry.identity)
			l.lru.Remove(elem)
		}
	}
}

// Stop terminates the background janitor
func (l *LocalLimiter) Stop() {
	close(l.stopCleanup)
}

// LocalStats holds LocalLimiter counters for monitoring
type LocalStats struct {
	CurrentEntries int   // identities currently tracked
	MaxEntries     int   // configured ceiling
	TotalEvictions int64 // LRU evictions since start
}

// Stats returns a snapshot of the limiter's counters
func (l *LocalLimiter) Stats() LocalStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return LocalStats{
		CurrentEntries: len(l.entries),
		MaxEntries:     l.maxEntries,
		TotalEvictions: l.totalEvictions,
	}
}
