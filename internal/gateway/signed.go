package gateway

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
	"github.com/itstimwhite/jovie-gateway/internal/botcheck"
	"github.com/itstimwhite/jovie-gateway/internal/links"
	"github.com/itstimwhite/jovie-gateway/internal/metrics"
	"github.com/itstimwhite/jovie-gateway/internal/middleware"
	"github.com/itstimwhite/jovie-gateway/internal/ratelimit"
)

type signedLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SignedLink exchanges a verified request for the wrapped link's real URL
// and a single-use, 60 second access grant.
func (g *Gateway) SignedLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")

		return
	}

	id := chi.URLParam(r, "id")
	if !links.ValidID(id) {
		writeError(w, http.StatusBadRequest, "Invalid link ID")

		return
	}

	meta := middleware.MetaFromContext(r.Context())
	now := g.now()

	detection := botcheck.Classify(botcheck.Signal{
		UserAgent: meta.UserAgent,
		Path:      r.URL.Path,
	})
	if detection.Reason != "" {
		g.dispatchAudit(&analytics.BotAuditEvent{
			IP:         meta.ClientIP,
			UserAgent:  detection.UserAgent,
			Reason:     detection.Reason,
			Path:       r.URL.Path,
			Blocked:    detection.ShouldBlock,
			DetectedAt: now,
		})
	}

	if detection.ShouldBlock {
		// Bots get an empty 204: no error body to tune evasion against.
		metrics.BotBlockedTotal.Inc()
		w.WriteHeader(http.StatusNoContent)

		return
	}

	blocked, err := g.limiter.CheckAndConsume(r.Context(), meta.ClientIP, ratelimit.ScopeGeneral)
	if err != nil {
		g.logger.Error("rate limit check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	if blocked {
		metrics.RateLimitedTotal.Inc()
		g.setRateLimitHeaders(w, r, meta.ClientIP)
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")

		return
	}

	if err = parseVerification(r.Body, now); err != nil {
		switch {
		case errors.Is(err, errVerificationMissing):
			writeError(w, http.StatusBadRequest, "Verification required")
		case errors.Is(err, errRequestExpired):
			writeError(w, http.StatusBadRequest, "Request expired")
		default:
			writeError(w, http.StatusBadRequest, "Invalid request body")
		}

		return
	}

	link, err := g.links.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, links.ErrNotFound) {
			metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusNotFound, "Link not found")

			return
		}

		g.logger.Error("link resolution failed", zap.String("link_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")

		return
	}

	grant := g.issuer.Issue()

	record := &links.SignedAccessRecord{
		ID:        uuid.NewString(),
		LinkID:    link.ID,
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
	}

	if err = g.access.Save(r.Context(), record); err != nil {
		if !errors.Is(err, links.ErrSchemaNotReady) {
			g.logger.Error("access record persistence failed",
				zap.String("link_id", link.ID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "Internal server error")

			return
		}

		// Tolerated while the access-record migration is in flight; the
		// grant is still handed out.
		g.logger.Warn("access record not persisted, schema not ready",
			zap.String("link_id", link.ID),
			zap.Error(err),
		)
	}

	metrics.TokensIssuedTotal.Inc()

	g.dispatchClick(&analytics.ClickEvent{
		LinkID:     link.ID,
		LinkType:   analytics.LinkTypeWrapped,
		Target:     link.OriginalURL,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		OccurredAt: now,
	})

	metrics.RedirectsTotal.WithLabelValues("issued").Inc()
	noStore(w)
	writeJSON(w, http.StatusOK, signedLinkResponse{
		URL:       link.OriginalURL,
		ExpiresAt: grant.ExpiresAt,
	})
}

// setRateLimitHeaders adds standard rate-limit headers from the limiter's
// status query, best effort.
func (g *Gateway) setRateLimitHeaders(w http.ResponseWriter, r *http.Request, identifier string) {
	status, err := g.limiter.Status(r.Context(), identifier, ratelimit.ScopeGeneral)
	if err != nil {
		return
	}

	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(status.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(status.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(status.ResetAt.Unix(), 10))
}
