package links

import (
	"context"
	"time"
)

// GrantTTL is the redemption window for a signed access record. It is fixed
// rather than per-call configurable so the exposure window stays uniformly
// short across all redemptions.
const GrantTTL = 60 * time.Second

// SignedAccessRecord is a single-use, time-boxed grant produced after a
// verified request. Expiry is enforced by timestamp comparison at redemption
// time; records are never actively deleted here.
type SignedAccessRecord struct {
	ID        string
	LinkID    string
	Token     string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// AccessStore persists signed access records.
//
// Implementations must translate schema-incomplete failures (an enumerated
// set of error codes, not string matching) into ErrSchemaNotReady so the
// gateway can tolerate them while the schema migration is in flight.
type AccessStore interface {
	Save(ctx context.Context, record *SignedAccessRecord) error
}
