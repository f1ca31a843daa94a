// Package analytics defines the gateway's telemetry events. Events are
// published fire-and-forget: a publish failure is logged by the caller and
// never reaches the response path.
package analytics

import "time"

const (
	// TopicLinkClicked carries click events for wrapped links and
	// destination choices.
	TopicLinkClicked = "link.clicked"
	// TopicBotDetected carries the bot classifier's audit trail.
	TopicBotDetected = "bot.detected"
)

// Link types attached to click events.
const (
	LinkTypeWrapped = "wrapped"
	LinkTypeListen  = "listen"
)

// ClickEvent records one click against a wrapped link or a destination
// choice on the picker page.
type ClickEvent struct {
	LinkID     string    `json:"linkId,omitempty"`
	Handle     string    `json:"handle,omitempty"`
	LinkType   string    `json:"linkType"`
	Target     string    `json:"target"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BotAuditEvent records one bot classification, blocked or not.
type BotAuditEvent struct {
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	Reason     string    `json:"reason"`
	Path       string    `json:"path"`
	Blocked    bool      `json:"blocked"`
	DetectedAt time.Time `json:"detectedAt"`
}
