package gateway_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itstimwhite/jovie-gateway/internal/analytics"
	"github.com/itstimwhite/jovie-gateway/internal/links"
)

const (
	testLinkID  = "abc123"
	testLinkURL = "https://open.example/artist/xyz"
)

func verifiedBody() string {
	return fmt.Sprintf(`{"verified": true, "timestamp": %d}`, time.Now().UnixMilli())
}

func postSignedLink(handler http.Handler, id, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/link/"+id, strings.NewReader(body))
	req.RemoteAddr = "198.51.100.7:40000"
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", chromeUA)

	for _, m := range mutate {
		m(req)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

func TestSignedLink_HappyPath(t *testing.T) {
	f := newFixture()
	f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
	handler := f.router()

	rec := postSignedLink(handler, testLinkID, verifiedBody())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		URL       string    `json:"url"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, testLinkURL, resp.URL)
	assert.WithinDuration(t, time.Now().Add(60*time.Second), resp.ExpiresAt, 2*time.Second)

	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
	assert.Equal(t, "noindex, nofollow, nosnippet, noarchive", rec.Header().Get("X-Robots-Tag"))

	records := f.access.Records()
	require.Len(t, records, 1)
	assert.Equal(t, testLinkID, records[0].LinkID)
	assert.NotEmpty(t, records[0].Token)
	assert.Equal(t, "198.51.100.7", records[0].IPAddress)

	click, ok := waitClick(f.clicks)
	require.True(t, ok, "click event should be dispatched")
	assert.Equal(t, testLinkID, click.LinkID)
	assert.Equal(t, analytics.LinkTypeWrapped, click.LinkType)
}

func TestSignedLink_ReissueAfterExpiry(t *testing.T) {
	f := newFixture()
	f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
	handler := f.router()

	// The same verified payload stays valid for five minutes; each exchange
	// issues a fresh token regardless of earlier grants expiring.
	body := verifiedBody()

	first := postSignedLink(handler, testLinkID, body)
	second := postSignedLink(handler, testLinkID, body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	records := f.access.Records()
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].Token, records[1].Token, "each exchange issues a new token")
}

func TestSignedLink_Validation(t *testing.T) {
	f := newFixture()
	f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
	handler := f.router()

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/link/"+testLinkID, nil)
		req.Header.Set("User-Agent", chromeUA)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	})

	t.Run("id longer than 20 characters", func(t *testing.T) {
		rec := postSignedLink(handler, strings.Repeat("a", 21), verifiedBody())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid link ID"}`, rec.Body.String())
	})

	t.Run("malformed json body", func(t *testing.T) {
		rec := postSignedLink(handler, testLinkID, `{"verified":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
	})

	t.Run("missing verification claim", func(t *testing.T) {
		rec := postSignedLink(handler, testLinkID, `{"verified": false}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Verification required"}`, rec.Body.String())
	})

	t.Run("stale timestamp", func(t *testing.T) {
		stale := time.Now().Add(-6 * time.Minute).UnixMilli()
		rec := postSignedLink(handler, testLinkID,
			fmt.Sprintf(`{"verified": true, "timestamp": %d}`, stale))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Request expired"}`, rec.Body.String())
	})

	t.Run("future timestamp", func(t *testing.T) {
		future := time.Now().Add(time.Minute).UnixMilli()
		rec := postSignedLink(handler, testLinkID,
			fmt.Sprintf(`{"verified": true, "timestamp": %d}`, future))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Request expired"}`, rec.Body.String())
	})
}

func TestSignedLink_Resolution(t *testing.T) {
	t.Run("unknown id returns 404", func(t *testing.T) {
		f := newFixture()
		handler := f.router()

		rec := postSignedLink(handler, "missing", verifiedBody())

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Link not found"}`, rec.Body.String())
	})

	t.Run("storage failure returns 500, not 404", func(t *testing.T) {
		f := newFixture()
		f.cfg.Links = failingLinkRepo{}
		handler := f.router()

		rec := postSignedLink(handler, testLinkID, verifiedBody())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})
}

func TestSignedLink_BotsAndLimits(t *testing.T) {
	t.Run("classified bot gets an empty 204, never the url", func(t *testing.T) {
		f := newFixture()
		f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
		handler := f.router()

		rec := postSignedLink(handler, testLinkID, verifiedBody(), func(r *http.Request) {
			r.Header.Set("User-Agent", "curl/8.4.0")
		})

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), testLinkURL)

		select {
		case audit := <-f.audits:
			assert.True(t, audit.Blocked)
			assert.Equal(t, "curl/8.4.0", audit.UserAgent)
		case <-time.After(2 * time.Second):
			t.Fatal("audit event should be dispatched")
		}
	})

	t.Run("requests over the ceiling get 429", func(t *testing.T) {
		f := newFixture()
		f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
		handler := f.router()

		// The general scope allows 60 per minute.
		for range 60 {
			rec := postSignedLink(handler, testLinkID, verifiedBody())
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := postSignedLink(handler, testLinkID, verifiedBody())

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, rec.Body.String())
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	})
}

func TestSignedLink_Persistence(t *testing.T) {
	t.Run("schema-not-ready save failure is tolerated", func(t *testing.T) {
		f := newFixture()
		f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
		f.cfg.Access = &failingAccessStore{err: fmt.Errorf("save: %w", links.ErrSchemaNotReady)}
		handler := f.router()

		rec := postSignedLink(handler, testLinkID, verifiedBody())

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("any other save failure is fatal", func(t *testing.T) {
		f := newFixture()
		f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
		f.cfg.Access = &failingAccessStore{err: errStorage}
		handler := f.router()

		rec := postSignedLink(handler, testLinkID, verifiedBody())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})

	t.Run("click publish failure does not change the response", func(t *testing.T) {
		f := newFixture()
		f.links.Add(&links.WrappedLink{ID: testLinkID, OriginalURL: testLinkURL})
		f.cfg.PublishClick = errorPublish[analytics.ClickEvent]()
		handler := f.router()

		rec := postSignedLink(handler, testLinkID, verifiedBody())

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
