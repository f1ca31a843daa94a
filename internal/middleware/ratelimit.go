package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/metrics"
	"github.com/itstimwhite/jovie-gateway/internal/ratelimit"
)

// RateLimit returns a Huma middleware that limits the introspection API per
// client IP under the given scope and emits standard rate-limit headers
// built from the limiter's status query.
func RateLimit(
	api huma.API,
	limiter *ratelimit.FixedWindowLimiter,
	scope ratelimit.Scope,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		identifier := humaClientIP(ctx)

		blocked, err := limiter.CheckAndConsume(ctx.Context(), identifier, scope)
		if err != nil {
			logger.Error("rate limit check failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if status, statusErr := limiter.Status(ctx.Context(), identifier, scope); statusErr == nil {
			ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(status.Limit, 10))
			ctx.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(status.Remaining, 10))
			ctx.SetHeader("X-RateLimit-Reset", strconv.FormatInt(status.ResetAt.Unix(), 10))
		}

		if blocked {
			metrics.RateLimitedTotal.Inc()
			logger.Warn("rate limit exceeded",
				zap.String("client_ip", identifier),
				zap.String("scope", string(scope)),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// humaClientIP extracts the client IP from a huma context, considering
// proxy headers.
func humaClientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
