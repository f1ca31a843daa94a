package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/links"
	"github.com/itstimwhite/jovie-gateway/internal/messaging"
)

// NewClickHandler returns the consumer-side handler for click events. It
// persists the event and, for wrapped-link clicks, bumps the link's click
// counter. A missing link is logged and acked rather than retried: the link
// may have been created on another instance the consumer cannot see yet.
func NewClickHandler(store Store, linkRepo links.Repository, logger *zap.Logger) messaging.Handler[ClickEvent] {
	return func(ctx context.Context, event *ClickEvent) error {
		if err := store.SaveClick(ctx, event); err != nil {
			return err
		}

		if event.LinkID == "" {
			return nil
		}

		if err := linkRepo.IncrementClicks(ctx, event.LinkID); err != nil {
			logger.Warn("click count increment failed",
				zap.String("link_id", event.LinkID),
				zap.Error(err),
			)
		}

		return nil
	}
}

// NewBotAuditHandler returns the consumer-side handler for bot detection
// audit events.
func NewBotAuditHandler(store Store) messaging.Handler[BotAuditEvent] {
	return func(ctx context.Context, event *BotAuditEvent) error {
		return store.SaveBotDetection(ctx, event)
	}
}
