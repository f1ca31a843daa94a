package store

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// sweepProbability is the chance that a call to Incr also sweeps expired
// windows. Opportunistic sweeping bounds memory without a timer goroutine.
const sweepProbability = 0.1

type window struct {
	count   int64
	resetAt time.Time
}

// RateLimitMemoryStore is an in-memory, process-local implementation of
// ratelimit.Store. Counters are not shared across instances; a horizontally
// scaled deployment gets independent limits per process.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *RateLimitMemoryStore) Incr(_ context.Context, key string, ceiling int64, windowDur time.Duration) (int64, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if rand.Float64() < sweepProbability {
		s.sweep(now)
	}

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(windowDur)}
		s.windows[key] = w

		return w.count, w.resetAt, false, nil
	}

	if w.count >= ceiling {
		// Blocked requests do not push the counter past the ceiling.
		return w.count, w.resetAt, true, nil
	}

	w.count++

	return w.count, w.resetAt, false, nil
}

func (s *RateLimitMemoryStore) Peek(_ context.Context, key string) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || s.now().After(w.resetAt) {
		return 0, time.Time{}, nil
	}

	return w.count, w.resetAt, nil
}

// sweep drops every window that has already expired. Caller holds the lock.
func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

// Len reports the number of live windows. Used in tests.
func (s *RateLimitMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}
