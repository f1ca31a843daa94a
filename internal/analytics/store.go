package analytics

import "context"

// Store persists telemetry events on the consumer side.
type Store interface {
	SaveClick(ctx context.Context, event *ClickEvent) error
	SaveBotDetection(ctx context.Context, event *BotAuditEvent) error
}
