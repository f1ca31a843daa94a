// Package gateway implements the protected link redirection endpoints: the
// signed-link exchange and the multi-destination resolver.
package gateway

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
	"github.com/itstimwhite/jovie-gateway/internal/artists"
	"github.com/itstimwhite/jovie-gateway/internal/links"
	"github.com/itstimwhite/jovie-gateway/internal/messaging"
	"github.com/itstimwhite/jovie-gateway/internal/ratelimit"
	"github.com/itstimwhite/jovie-gateway/internal/token"
)

// Config wires the gateway's collaborators.
type Config struct {
	Links        links.Repository
	Access       links.AccessStore
	Artists      artists.Repository
	Issuer       *token.Issuer
	Limiter      *ratelimit.FixedWindowLimiter
	PublishClick messaging.Publish[analytics.ClickEvent]
	PublishAudit messaging.Publish[analytics.BotAuditEvent]
	Logger       *zap.Logger
}

// Gateway orchestrates bot classification, rate limiting, link resolution,
// and token issuance for the public redirect endpoints.
type Gateway struct {
	links        links.Repository
	access       links.AccessStore
	artists      artists.Repository
	issuer       *token.Issuer
	limiter      *ratelimit.FixedWindowLimiter
	publishClick messaging.Publish[analytics.ClickEvent]
	publishAudit messaging.Publish[analytics.BotAuditEvent]
	logger       *zap.Logger
	now          func() time.Time
}

// New creates a gateway from its collaborators.
func New(cfg Config) *Gateway {
	return &Gateway{
		links:        cfg.Links,
		access:       cfg.Access,
		artists:      cfg.Artists,
		issuer:       cfg.Issuer,
		limiter:      cfg.Limiter,
		publishClick: cfg.PublishClick,
		publishAudit: cfg.PublishAudit,
		logger:       cfg.Logger,
		now:          time.Now,
	}
}

// RegisterRoutes mounts the public gateway routes. The signed-link route is
// registered for all methods so the handler can answer non-POST requests
// with a 405 body.
func (g *Gateway) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/link/{id}", g.SignedLink)
	r.Get("/{handle}/link", g.Destinations)
	r.Post("/{handle}/link/click", g.DestinationClick)
}

// dispatchClick publishes a click event without blocking the response path.
// Failures are logged and discarded.
func (g *Gateway) dispatchClick(event *analytics.ClickEvent) {
	go func() {
		if err := g.publishClick(event); err != nil {
			g.logger.Error("click event publish failed",
				zap.String("link_id", event.LinkID),
				zap.String("handle", event.Handle),
				zap.Error(err),
			)
		}
	}()
}

// dispatchAudit publishes a bot detection audit event without blocking the
// response path. Failures are logged and discarded.
func (g *Gateway) dispatchAudit(event *analytics.BotAuditEvent) {
	go func() {
		if err := g.publishAudit(event); err != nil {
			g.logger.Error("bot audit publish failed",
				zap.String("ip", event.IP),
				zap.Error(err),
			)
		}
	}()
}
