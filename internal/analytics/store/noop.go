package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
)

// Noop is a no-op implementation of analytics.Store that only logs events.
// Used when no database is configured.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveClick(_ context.Context, event *analytics.ClickEvent) error {
	n.logger.Info("click event received",
		zap.String("linkId", event.LinkID),
		zap.String("handle", event.Handle),
		zap.String("linkType", event.LinkType),
		zap.String("target", event.Target),
	)

	return nil
}

func (n *Noop) SaveBotDetection(_ context.Context, event *analytics.BotAuditEvent) error {
	n.logger.Info("bot detection event received",
		zap.String("ip", event.IP),
		zap.String("reason", event.Reason),
		zap.String("path", event.Path),
		zap.Bool("blocked", event.Blocked),
	)

	return nil
}
