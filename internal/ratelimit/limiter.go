// Package ratelimit provides fixed-window request limiting keyed by
// (identifier, scope).
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Scope names a rate limit profile. Callers select the scope explicitly;
// it is never inferred from the request.
type Scope string

const (
	// ScopeGeneral applies to general API traffic.
	ScopeGeneral Scope = "general"
	// ScopeStrict applies to health and introspection style endpoints.
	ScopeStrict Scope = "strict"
)

// LimitConfig is the ceiling and window for one scope.
type LimitConfig struct {
	Ceiling int64
	Window  time.Duration
}

// Policy maps scopes to their limit configuration.
type Policy map[Scope]LimitConfig

// DefaultPolicy returns the stock limits: a looser profile for general API
// traffic and a stricter one for introspection endpoints.
func DefaultPolicy() Policy {
	return Policy{
		ScopeGeneral: {Ceiling: 60, Window: time.Minute},
		ScopeStrict:  {Ceiling: 10, Window: time.Minute},
	}
}

// Status describes the current window for an (identifier, scope) pair,
// shaped for standard rate-limit response headers.
type Status struct {
	Limit     int64
	Remaining int64
	ResetAt   time.Time
	Blocked   bool
}

// FixedWindowLimiter counts requests per (identifier, scope) in fixed
// windows. Whether limits hold across processes depends entirely on the
// backing Store: the in-memory store is process-local, so horizontally
// scaled deployments get independent limits per instance.
type FixedWindowLimiter struct {
	store  Store
	policy Policy
}

// NewFixedWindowLimiter creates a limiter over the given store and policy.
func NewFixedWindowLimiter(store Store, policy Policy) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store:  store,
		policy: policy,
	}
}

// CheckAndConsume records a request for the identifier under the given scope
// and reports whether it exceeded the ceiling. The check-and-increment is a
// single atomic unit in the store; once the ceiling is reached further
// requests are rejected without incrementing the counter.
func (l *FixedWindowLimiter) CheckAndConsume(ctx context.Context, identifier string, scope Scope) (bool, error) {
	limit, ok := l.policy[scope]
	if !ok {
		return false, fmt.Errorf("no limit configured for scope %q", scope)
	}

	_, _, blocked, err := l.store.Incr(ctx, buildKey(identifier, scope), limit.Ceiling, limit.Window)
	if err != nil {
		return false, err
	}

	return blocked, nil
}

// Status reports the current window state without consuming a request.
func (l *FixedWindowLimiter) Status(ctx context.Context, identifier string, scope Scope) (Status, error) {
	limit, ok := l.policy[scope]
	if !ok {
		return Status{}, fmt.Errorf("no limit configured for scope %q", scope)
	}

	count, resetAt, err := l.store.Peek(ctx, buildKey(identifier, scope))
	if err != nil {
		return Status{}, err
	}

	if resetAt.IsZero() || time.Now().After(resetAt) {
		// No live window for this key yet.
		return Status{
			Limit:     limit.Ceiling,
			Remaining: limit.Ceiling,
			ResetAt:   time.Now().Add(limit.Window),
		}, nil
	}

	remaining := limit.Ceiling - count
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		Limit:     limit.Ceiling,
		Remaining: remaining,
		ResetAt:   resetAt,
		Blocked:   count >= limit.Ceiling,
	}, nil
}

func buildKey(identifier string, scope Scope) string {
	return identifier + ":" + string(scope)
}
