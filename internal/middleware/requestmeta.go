package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Meta holds HTTP request metadata used by the gateway for rate limiting
// and telemetry.
type Meta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

type metaKey struct{}

// RequestMeta extracts the client IP, user agent, and referrer once per
// request and stores them in the context.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := Meta{
			ClientIP:  clientIP(r),
			UserAgent: r.UserAgent(),
			Referrer:  r.Referer(),
		}

		next.ServeHTTP(w, r.WithContext(ContextWithMeta(r.Context(), meta)))
	})
}

// ContextWithMeta adds request metadata to the context.
func ContextWithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// MetaFromContext extracts request metadata from the context.
func MetaFromContext(ctx context.Context) Meta {
	if meta, ok := ctx.Value(metaKey{}).(Meta); ok {
		return meta
	}

	return Meta{}
}

// clientIP extracts the client IP, considering proxy headers.
func clientIP(r *http.Request) string {
	// X-Forwarded-For may contain a comma-separated chain; the first entry
	// is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
