package ratelimit

import (
	"context"
	"time"
)

// Store holds fixed-window counters. Implementations must make Incr an
// atomic check-and-increment: two concurrent calls on the same key at the
// ceiling boundary must not both pass.
type Store interface {
	// Incr consumes one request slot for key. A new window starts when the
	// previous one has expired. When the current window already holds
	// ceiling requests, blocked is true and the count is left unchanged.
	Incr(ctx context.Context, key string, ceiling int64, window time.Duration) (count int64, resetAt time.Time, blocked bool, err error)

	// Peek returns the live window state for key without consuming a slot.
	// A missing or expired window reports a zero count and zero reset time.
	Peek(ctx context.Context, key string) (count int64, resetAt time.Time, err error)
}
