package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process CounterStore with the same semantics as
// RedisStore. It is intended for tests and single-process deployments;
// it does not share state across processes.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string]*memorySet
	now  func() time.Time
}

type memorySet struct {
	entries   []memoryEntry // ordered by score ascending
	expiresAt time.Time
}

type memoryEntry struct {
	score  int64
	member string
}

// NewMemoryStore creates an empty in-memory counter store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sets: make(map[string]*memorySet),
		now:  time.Now,
	}
}

var _ CounterStore = (*MemoryStore)(nil)

// Slide implements CounterStore
func (s *MemoryStore) Slide(_ context.Context, key string, cutoff int64, member string, score int64, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	set := s.sets[key]
	if set == nil || now.After(set.expiresAt) {
		set = &memorySet{}
		s.sets[key] = set
	}

	// Prune entries at or below the cutoff score
	idx := sort.Search(len(set.entries), func(i int) bool {
		return set.entries[i].score > cutoff
	})
	set.entries = set.entries[idx:]

	countBefore := int64(len(set.entries))

	pos := sort.Search(len(set.entries), func(i int) bool {
		return set.entries[i].score > score
	})
	set.entries = append(set.entries, memoryEntry{})
	copy(set.entries[pos+1:], set.entries[pos:])
	set.entries[pos] = memoryEntry{score: score, member: member}

	set.expiresAt = now.Add(ttl)

	return countBefore, nil
}

// Remove implements CounterStore
func (s *MemoryStore) Remove(_ context.Context, key string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[key]
	if set == nil {
		return nil
	}
	for i, e := range set.entries {
		if e.member == member {
			set.entries = append(set.entries[:i], set.entries[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports the number of live entries for key. Test helper.
func (s *MemoryStore) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[key]
	if set == nil || s.now().After(set.expiresAt) {
		return 0
	}
	return len(set.entries)
}
