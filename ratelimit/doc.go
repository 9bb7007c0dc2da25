// Package ratelimit implements a sliding-window distributed rate limiter
// backed by a remote counter store with atomic pipelined sorted-set
// operations (typically Redis).
//
// # Algorithm
//
// Each caller identity maps to one sorted set keyed by request timestamp.
// A single pipelined round trip prunes entries older than the window,
// counts the survivors, inserts a token for the current request and
// refreshes the key TTL. The count observed before insertion decides
// admission, so two concurrent requests for the same identity can never
// both read a stale count. A rejected request's own token is rolled back
// so that hammering a limited endpoint does not keep the window full.
//
// # Failure Semantics
//
// The limiter fails open: when the counter store is unreachable the
// request is admitted with a full quota and the error is logged as a
// warning. Rate limiting is a protection layer, not a dependency the
// whole API should fall over on.
//
// # Presets
//
// Named presets cover the usual endpoint classes:
//
//	AuthPreset()   // 5 requests / 15 minutes, login and password reset
//	APIPreset()    // 100 requests / minute, general API traffic
//	AdminPreset()  // 60 requests / minute, admin surface
//	UploadPreset() // 20 requests / hour, media uploads
//
// All presets use the same code path; they differ only in configuration.
//
// For hosts without a counter store, LocalLimiter provides an in-process
// token-bucket alternative with LRU eviction.
package ratelimit
