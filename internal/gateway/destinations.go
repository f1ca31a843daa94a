package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
	"github.com/itstimwhite/jovie-gateway/internal/artists"
	"github.com/itstimwhite/jovie-gateway/internal/dsp"
	"github.com/itstimwhite/jovie-gateway/internal/metrics"
	"github.com/itstimwhite/jovie-gateway/internal/middleware"
)

// Destinations resolves an artist's reachable platforms and either redirects
// or serves the destination picker.
//
// Zero destinations fall back to the plain profile page. Exactly one
// destination redirects straight through: forcing a choice among one option
// is friction with no value. Two or more serve the picker.
func (g *Gateway) Destinations(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	artist, err := g.artists.GetByHandle(r.Context(), handle)
	if err != nil {
		if errors.Is(err, artists.ErrNotFound) {
			notFoundPage(w)

			return
		}

		g.logger.Error("artist lookup failed", zap.String("handle", handle), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	releases, err := g.artists.ListReleases(r.Context(), artist.ID)
	if err != nil {
		g.logger.Error("release listing failed", zap.String("handle", handle), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	destinations := dsp.AvailableDestinations(artist, releases)
	meta := middleware.MetaFromContext(r.Context())

	switch len(destinations) {
	case 0:
		metrics.DestinationRequestsTotal.WithLabelValues("profile").Inc()
		http.Redirect(w, r, "/"+artist.Handle, http.StatusFound)
	case 1:
		metrics.DestinationRequestsTotal.WithLabelValues("auto").Inc()
		g.dispatchClick(&analytics.ClickEvent{
			Handle:     artist.Handle,
			LinkType:   analytics.LinkTypeListen,
			Target:     string(destinations[0].Platform),
			ClientIP:   meta.ClientIP,
			UserAgent:  meta.UserAgent,
			OccurredAt: g.now(),
		})
		http.Redirect(w, r, destinations[0].URL, http.StatusFound)
	default:
		metrics.DestinationRequestsTotal.WithLabelValues("picker").Inc()
		g.renderPicker(w, artist, destinations)
	}
}

// DestinationClick is the picker page's click beacon. It always answers 204:
// click tracking is fire-and-forget and must never block navigation.
func (g *Gateway) DestinationClick(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	meta := middleware.MetaFromContext(r.Context())

	var payload struct {
		Target string `json:"target"`
	}

	if err := json.NewDecoder(io.LimitReader(r.Body, maxVerificationBody)).Decode(&payload); err == nil && payload.Target != "" {
		g.dispatchClick(&analytics.ClickEvent{
			Handle:     handle,
			LinkType:   analytics.LinkTypeListen,
			Target:     payload.Target,
			ClientIP:   meta.ClientIP,
			UserAgent:  meta.UserAgent,
			OccurredAt: g.now(),
		})
	}

	w.WriteHeader(http.StatusNoContent)
}
