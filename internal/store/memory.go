package store

import (
	"context"
	"sort"
	"sync"

	"github.com/itstimwhite/jovie-gateway/internal/artists"
	"github.com/itstimwhite/jovie-gateway/internal/dsp"
	"github.com/itstimwhite/jovie-gateway/internal/links"
)

// MemoryLinkStore is an in-memory implementation of links.Repository.
type MemoryLinkStore struct {
	mu    sync.RWMutex
	links map[string]*links.WrappedLink
}

// NewMemoryLinkStore creates a new in-memory link store.
func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{
		links: make(map[string]*links.WrappedLink),
	}
}

// Add registers a wrapped link. Link creation is an external flow; this
// exists for local development and tests.
func (m *MemoryLinkStore) Add(link *links.WrappedLink) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *link
	m.links[link.ID] = &copied
}

func (m *MemoryLinkStore) Resolve(_ context.Context, id string) (*links.WrappedLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok {
		return nil, links.ErrNotFound
	}

	copied := *link

	return &copied, nil
}

func (m *MemoryLinkStore) IncrementClicks(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return links.ErrNotFound
	}

	link.ClickCount++

	return nil
}

// MemoryAccessStore is an in-memory implementation of links.AccessStore.
type MemoryAccessStore struct {
	mu      sync.Mutex
	records []*links.SignedAccessRecord
}

// NewMemoryAccessStore creates a new in-memory access record store.
func NewMemoryAccessStore() *MemoryAccessStore {
	return &MemoryAccessStore{}
}

func (m *MemoryAccessStore) Save(_ context.Context, record *links.SignedAccessRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	m.records = append(m.records, &copied)

	return nil
}

// Records returns a snapshot of all saved records. Used in tests.
func (m *MemoryAccessStore) Records() []*links.SignedAccessRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*links.SignedAccessRecord, len(m.records))
	copy(out, m.records)

	return out
}

// MemoryArtistStore is an in-memory implementation of artists.Repository.
type MemoryArtistStore struct {
	mu       sync.RWMutex
	byHandle map[string]*dsp.Artist
	releases map[string][]dsp.Release // artist ID -> releases
}

// NewMemoryArtistStore creates a new in-memory artist store.
func NewMemoryArtistStore() *MemoryArtistStore {
	return &MemoryArtistStore{
		byHandle: make(map[string]*dsp.Artist),
		releases: make(map[string][]dsp.Release),
	}
}

// Add registers an artist with its releases.
func (m *MemoryArtistStore) Add(artist *dsp.Artist, releases []dsp.Release) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *artist
	m.byHandle[artist.Handle] = &copied
	m.releases[artist.ID] = releases
}

func (m *MemoryArtistStore) GetByHandle(_ context.Context, handle string) (*dsp.Artist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	artist, ok := m.byHandle[handle]
	if !ok || !artist.Published {
		return nil, artists.ErrNotFound
	}

	copied := *artist

	return &copied, nil
}

func (m *MemoryArtistStore) ListReleases(_ context.Context, artistID string) ([]dsp.Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	releases := make([]dsp.Release, len(m.releases[artistID]))
	copy(releases, m.releases[artistID])

	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].ReleasedAt.After(releases[j].ReleasedAt)
	})

	return releases, nil
}
