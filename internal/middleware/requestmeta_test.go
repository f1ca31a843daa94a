package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itstimwhite/jovie-gateway/internal/middleware"
)

func captureMeta(t *testing.T, prepare func(r *http.Request)) middleware.Meta {
	t.Helper()

	var captured middleware.Meta

	handler := middleware.RequestMeta(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = middleware.MetaFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/timwhite/link", nil)
	req.RemoteAddr = "192.0.2.1:51000"
	prepare(req)

	handler.ServeHTTP(httptest.NewRecorder(), req)

	return captured
}

func TestRequestMeta(t *testing.T) {
	t.Parallel()

	t.Run("uses first X-Forwarded-For entry", func(t *testing.T) {
		meta := captureMeta(t, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		})

		assert.Equal(t, "203.0.113.9", meta.ClientIP)
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		meta := captureMeta(t, func(r *http.Request) {
			r.Header.Set("X-Real-IP", "203.0.113.7")
		})

		assert.Equal(t, "203.0.113.7", meta.ClientIP)
	})

	t.Run("falls back to remote addr without port", func(t *testing.T) {
		meta := captureMeta(t, func(_ *http.Request) {})

		assert.Equal(t, "192.0.2.1", meta.ClientIP)
	})

	t.Run("captures user agent and referrer", func(t *testing.T) {
		meta := captureMeta(t, func(r *http.Request) {
			r.Header.Set("User-Agent", "test-agent")
			r.Header.Set("Referer", "https://example.com")
		})

		assert.Equal(t, "test-agent", meta.UserAgent)
		assert.Equal(t, "https://example.com", meta.Referrer)
	})

	t.Run("missing meta yields zero value", func(t *testing.T) {
		meta := middleware.MetaFromContext(t.Context())

		assert.Empty(t, meta.ClientIP)
	})
}
