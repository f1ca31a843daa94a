package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript performs the fixed-window check-and-increment atomically so
// concurrent requests on the same key cannot both pass at the ceiling.
// Returns {count, pttl_ms, blocked}.
var incrScript = redis.NewScript(`
local count = redis.call('GET', KEYS[1])

if count == false then
	redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
	return {1, tonumber(ARGV[2]), 0}
end

count = tonumber(count)

if count >= tonumber(ARGV[1]) then
	return {count, redis.call('PTTL', KEYS[1]), 1}
end

count = redis.call('INCR', KEYS[1])
return {count, redis.call('PTTL', KEYS[1]), 0}
`)

// RateLimitRedisStore is a Redis implementation of ratelimit.Store. Unlike
// the in-memory store its counters are shared, so limits hold across
// horizontally scaled instances. Window expiry rides on key TTLs; no sweep
// is needed.
type RateLimitRedisStore struct {
	client *redis.Client
	prefix string
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (s *RateLimitRedisStore) Incr(ctx context.Context, key string, ceiling int64, window time.Duration) (int64, time.Time, bool, error) {
	result, err := incrScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		ceiling,
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, false, fmt.Errorf("rate limit incr: %w", err)
	}

	if len(result) != 3 {
		return 0, time.Time{}, false, fmt.Errorf("rate limit incr: unexpected script result %v", result)
	}

	count := result[0]
	resetAt := time.Now().Add(time.Duration(result[1]) * time.Millisecond)
	blocked := result[2] == 1

	return count, resetAt, blocked, nil
}

func (s *RateLimitRedisStore) Peek(ctx context.Context, key string) (int64, time.Time, error) {
	redisKey := s.prefix + key

	count, err := s.client.Get(ctx, redisKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, time.Time{}, nil
		}

		return 0, time.Time{}, fmt.Errorf("rate limit peek: %w", err)
	}

	ttl, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit peek ttl: %w", err)
	}

	if ttl <= 0 {
		return 0, time.Time{}, nil
	}

	return count, time.Now().Add(ttl), nil
}
