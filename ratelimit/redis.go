package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements CounterStore on a Redis sorted set per identity.
// All four window operations are issued in one transactional pipeline, so
// concurrent callers on the same key serialize server-side and never
// observe a stale count.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a counter store on the given Redis client.
// The client's own dial and read timeouts bound the round trip; the store
// adds no deadline of its own.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

var _ CounterStore = (*RedisStore)(nil)

// Slide implements CounterStore. The ZCARD is queued before the ZADD, so
// its result is the pre-insert count the limiter needs.
func (s *RedisStore) Slide(ctx context.Context, key string, cutoff int64, member string, score int64, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: member})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("counter store pipeline: %w", err)
	}
	return card.Val(), nil
}

// Remove implements CounterStore
func (s *RedisStore) Remove(ctx context.Context, key string, member string) error {
	if err := s.client.ZRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("counter store remove: %w", err)
	}
	return nil
}
