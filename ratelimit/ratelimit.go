package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Config holds a sliding-window limit definition. It is immutable once
// handed to a Limiter.
type Config struct {
	// Window is the sliding window duration
	Window time.Duration

	// MaxRequests is the maximum number of admitted requests per window
	MaxRequests int

	// KeyPrefix namespaces counter-store keys (e.g. "ratelimit:auth")
	KeyPrefix string
}

// Validate checks the configuration for values that should halt startup
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.MaxRequests <= 0 {
		return fmt.Errorf("max requests must be positive, got %d", c.MaxRequests)
	}
	if c.KeyPrefix == "" {
		return fmt.Errorf("key prefix must not be empty")
	}
	return nil
}

// Named presets for the endpoint classes of the API surface. Tighter
// window for authentication, looser for general traffic; all share the
// same limiter code path.

// AuthPreset limits login, registration and password reset endpoints
func AuthPreset() Config {
	return Config{Window: 15 * time.Minute, MaxRequests: 5, KeyPrefix: "ratelimit:auth"}
}

// APIPreset limits general public API traffic
func APIPreset() Config {
	return Config{Window: time.Minute, MaxRequests: 100, KeyPrefix: "ratelimit:api"}
}

// AdminPreset limits the admin surface
func AdminPreset() Config {
	return Config{Window: time.Minute, MaxRequests: 60, KeyPrefix: "ratelimit:admin"}
}

// UploadPreset limits media upload endpoints
func UploadPreset() Config {
	return Config{Window: time.Hour, MaxRequests: 20, KeyPrefix: "ratelimit:upload"}
}

// Result is the outcome of a rate limit check.
//
// Invariants: Remaining == 0 whenever Allowed is false, and
// Remaining <= Limit-1 whenever Allowed is true.
type Result struct {
	// Allowed reports whether the request may proceed
	Allowed bool

	// Remaining is the number of additional requests admitted in the
	// current window after this one
	Remaining int

	// Reset is when the caller's quota is fully restored. Computed as
	// now+window rather than from the oldest surviving entry, which makes
	// Retry-After slightly conservative near window boundaries.
	Reset time.Time

	// Limit is the configured maximum for the window
	Limit int

	// FailedOpen reports that the counter store was unavailable and the
	// request was admitted without being counted. Callers use this to
	// surface the degraded state (metrics, alerts) without the limiter
	// depending on any instrumentation itself.
	FailedOpen bool
}

// Limiter decides whether a caller identity may proceed, counting
// requests in a sliding window held in the counter store. Limiters hold
// no mutable state of their own and are safe for concurrent use.
type Limiter struct {
	store  CounterStore
	cfg    Config
	logger *slog.Logger

	// Test seams; default to time.Now and uuid-based tokens
	now       func() time.Time
	newMember func() string
}

// NewLimiter creates a limiter over the given counter store
func NewLimiter(store CounterStore, cfg Config, logger *slog.Logger) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("ratelimit: counter store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ratelimit: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		store:     store,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		newMember: func() string { return uuid.NewString() },
	}, nil
}

// Config returns the limiter's configuration
func (l *Limiter) Config() Config { return l.cfg }

// Check decides whether the identity may proceed and consumes one slot if
// so. A counter-store failure is logged and the limiter fails open: the
// request is admitted with full remaining quota and no error reaches the
// caller.
func (l *Limiter) Check(ctx context.Context, identity string) Result {
	now := l.now()
	key := l.cfg.KeyPrefix + ":" + identity
	member := l.newMember()
	cutoff := now.Add(-l.cfg.Window).UnixMilli()
	reset := now.Add(l.cfg.Window)

	countBefore, err := l.store.Slide(ctx, key, cutoff, member, now.UnixMilli(), l.cfg.Window)
	if err != nil {
		l.logger.Warn("counter store unavailable, failing open",
			"error", err,
			"key_prefix", l.cfg.KeyPrefix)
		return Result{Allowed: true, Remaining: l.cfg.MaxRequests, Reset: reset, Limit: l.cfg.MaxRequests, FailedOpen: true}
	}

	if countBefore >= int64(l.cfg.MaxRequests) {
		// Roll back this request's own token so a rejected attempt does
		// not consume a slot in the next window.
		if err := l.store.Remove(ctx, key, member); err != nil {
			l.logger.Warn("failed to roll back rejected request token",
				"error", err,
				"key_prefix", l.cfg.KeyPrefix)
		}
		return Result{Allowed: false, Remaining: 0, Reset: reset, Limit: l.cfg.MaxRequests}
	}

	remaining := l.cfg.MaxRequests - int(countBefore) - 1
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset, Limit: l.cfg.MaxRequests}
}
