package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
	"github.com/itstimwhite/jovie-gateway/internal/gateway"
	"github.com/itstimwhite/jovie-gateway/internal/links"
	"github.com/itstimwhite/jovie-gateway/internal/messaging"
	"github.com/itstimwhite/jovie-gateway/internal/middleware"
	"github.com/itstimwhite/jovie-gateway/internal/ratelimit"
	"github.com/itstimwhite/jovie-gateway/internal/store"
	"github.com/itstimwhite/jovie-gateway/internal/token"
)

var errStorage = errors.New("storage unavailable")

// failingLinkRepo simulates an unavailable link store, distinct from a
// not-found lookup.
type failingLinkRepo struct{}

func (failingLinkRepo) Resolve(_ context.Context, _ string) (*links.WrappedLink, error) {
	return nil, errStorage
}

func (failingLinkRepo) IncrementClicks(_ context.Context, _ string) error {
	return errStorage
}

// failingAccessStore fails every save with a configurable error.
type failingAccessStore struct {
	err error
}

func (f *failingAccessStore) Save(_ context.Context, _ *links.SignedAccessRecord) error {
	return f.err
}

// capturePublish records published events on a buffered channel.
func capturePublish[T any](ch chan *T) messaging.Publish[T] {
	return func(event *T) error {
		ch <- event

		return nil
	}
}

func errorPublish[T any]() messaging.Publish[T] {
	return func(_ *T) error {
		return errors.New("broker down")
	}
}

// fixture assembles a gateway over in-memory collaborators with capture
// channels for both event streams.
type fixture struct {
	links   *store.MemoryLinkStore
	access  *store.MemoryAccessStore
	artists *store.MemoryArtistStore
	clicks  chan *analytics.ClickEvent
	audits  chan *analytics.BotAuditEvent
	cfg     gateway.Config
}

func newFixture() *fixture {
	f := &fixture{
		links:   store.NewMemoryLinkStore(),
		access:  store.NewMemoryAccessStore(),
		artists: store.NewMemoryArtistStore(),
		clicks:  make(chan *analytics.ClickEvent, 16),
		audits:  make(chan *analytics.BotAuditEvent, 16),
	}

	issuer, err := token.NewIssuer()
	if err != nil {
		panic(fmt.Sprintf("issuer: %v", err))
	}

	limiter := ratelimit.NewFixedWindowLimiter(
		store.NewRateLimitMemoryStore(),
		ratelimit.DefaultPolicy(),
	)

	f.cfg = gateway.Config{
		Links:        f.links,
		Access:       f.access,
		Artists:      f.artists,
		Issuer:       issuer,
		Limiter:      limiter,
		PublishClick: capturePublish(f.clicks),
		PublishAudit: capturePublish(f.audits),
		Logger:       zap.NewNop(),
	}

	return f
}

// router builds the gateway's public routes behind the request metadata
// middleware, matching the production wiring.
func (f *fixture) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)
	gateway.New(f.cfg).RegisterRoutes(r)

	return r
}

// waitClick waits for one click event or fails after a short timeout.
func waitClick(ch chan *analytics.ClickEvent) (*analytics.ClickEvent, bool) {
	select {
	case event := <-ch:
		return event, true
	case <-time.After(2 * time.Second):
		return nil, false
	}
}
