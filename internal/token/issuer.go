// Package token issues the opaque tokens backing signed access records.
package token

import (
	"time"

	"github.com/jaevor/go-nanoid"

	"github.com/itstimwhite/jovie-gateway/internal/links"
)

// tokenLength gives ~192 bits of entropy over the URL-safe nanoid alphabet,
// comfortably past the 128-bit floor for unguessable tokens.
const tokenLength = 32

// Grant is an issued token together with its absolute expiry.
type Grant struct {
	Token     string
	ExpiresAt time.Time
}

// Issuer generates single-use access tokens. It is a pure value producer:
// it neither persists nor validates tokens, which stays the gateway's job.
type Issuer struct {
	generate func() string
	now      func() time.Time
}

// NewIssuer creates an issuer backed by a cryptographically secure,
// URL-safe token generator.
func NewIssuer() (*Issuer, error) {
	generate, err := nanoid.Standard(tokenLength)
	if err != nil {
		return nil, err
	}

	return &Issuer{
		generate: generate,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of the issuer using the given clock. Used in tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	return &Issuer{
		generate: i.generate,
		now:      now,
	}
}

// Issue produces a fresh token expiring exactly links.GrantTTL from now.
func (i *Issuer) Issue() Grant {
	return Grant{
		Token:     i.generate(),
		ExpiresAt: i.now().Add(links.GrantTTL),
	}
}
