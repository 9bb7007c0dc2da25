package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the remote atomic store backing the sliding window.
// Implementations must be safe for concurrent use from multiple
// goroutines and multiple processes.
type CounterStore interface {
	// Slide performs the window maintenance sequence for key in one atomic
	// round trip: remove members scored at or below cutoff, count the
	// members that remain, insert member at score, and refresh the key's
	// expiry to ttl. It returns the count observed before the insert.
	Slide(ctx context.Context, key string, cutoff int64, member string, score int64, ttl time.Duration) (int64, error)

	// Remove deletes a single member from the set. Used to roll back the
	// token inserted by a rejected request.
	Remove(ctx context.Context, key string, member string) error
}
