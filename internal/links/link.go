package links

import (
	"context"
	"errors"
	"time"
)

// MaxIDLength is the longest short identifier the gateway accepts.
const MaxIDLength = 20

// ErrNotFound is returned when no wrapped link exists for a short identifier.
var ErrNotFound = errors.New("link not found")

// ErrSchemaNotReady marks a persistence failure caused by an incomplete
// storage schema (missing table or column). These failures are tolerated
// during the schema migration; anything else is fatal. See AccessStore.
var ErrSchemaNotReady = errors.New("storage schema not ready")

// WrappedLink binds a short identifier to a real destination URL. The
// identifier is immutable once issued and the original URL is never exposed
// until a signed access grant exists.
type WrappedLink struct {
	ID          string
	OriginalURL string
	ClickCount  int64
	CreatedAt   time.Time
}

// Repository defines the read side of wrapped link storage. Links are created
// by an external flow; this service only resolves them and counts clicks.
type Repository interface {
	// Resolve returns the wrapped link for a short identifier.
	// Returns ErrNotFound when no link exists; any other error indicates
	// the store itself failed.
	Resolve(ctx context.Context, id string) (*WrappedLink, error)

	// IncrementClicks bumps the click counter for a link.
	IncrementClicks(ctx context.Context, id string) error
}

// ValidID reports whether a short identifier is well formed.
func ValidID(id string) bool {
	return id != "" && len(id) <= MaxIDLength
}
