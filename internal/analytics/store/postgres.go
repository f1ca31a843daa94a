package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
)

// Postgres persists analytics events to PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveClick(ctx context.Context, event *analytics.ClickEvent) error {
	query := `
		INSERT INTO click_events (link_id, handle, link_type, target, client_ip, user_agent, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.pool.Exec(ctx, query,
		nullable(event.LinkID),
		nullable(event.Handle),
		event.LinkType,
		event.Target,
		event.ClientIP,
		event.UserAgent,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("save click event: %w", err)
	}

	return nil
}

func (p *Postgres) SaveBotDetection(ctx context.Context, event *analytics.BotAuditEvent) error {
	query := `
		INSERT INTO bot_detections (ip, user_agent, reason, path, blocked, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		event.IP,
		event.UserAgent,
		event.Reason,
		event.Path,
		event.Blocked,
		event.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("save bot detection: %w", err)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
