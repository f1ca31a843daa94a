// Package artists defines the profile store contract consumed by the
// multi-destination endpoint. The profile editor that writes this data is a
// separate system; the gateway only reads it.
package artists

import (
	"context"
	"errors"

	"github.com/itstimwhite/jovie-gateway/internal/dsp"
)

// ErrNotFound is returned for unknown handles and for profiles that exist
// but are not published.
var ErrNotFound = errors.New("artist not found")

// Repository provides read access to artist profiles and their releases.
type Repository interface {
	// GetByHandle resolves a public handle to a published artist profile.
	GetByHandle(ctx context.Context, handle string) (*dsp.Artist, error)

	// ListReleases returns the artist's releases most-recent-first.
	ListReleases(ctx context.Context, artistID string) ([]dsp.Release, error)
}
