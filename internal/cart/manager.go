package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SweepInterval is how often the background sweeper re-checks live carts
// for expiration, so an abandoned open tab empties its cart without a new
// read.
const SweepInterval = 60 * time.Second

// Manager hands out one Store per session and runs the periodic
// expiration sweep over every cart it has handed out.
type Manager struct {
	mu      sync.Mutex
	storage SessionStorage
	ttl     time.Duration
	stores  map[string]*Store
	sfg     singleflight.Group // collapses concurrent loads of the same session
}

func NewManager(storage SessionStorage, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		storage: storage,
		ttl:     ttl,
		stores:  make(map[string]*Store),
	}
}

// Get returns the store for the session, loading persisted state on first
// use. Concurrent first reads of the same session share a single load.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	if store, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return store
	}
	m.mu.Unlock()

	v, _, _ := m.sfg.Do(sessionID, func() (interface{}, error) {
		store := NewStore(sessionID, m.storage, m.ttl)
		store.Load(ctx)

		m.mu.Lock()
		m.stores[sessionID] = store
		m.mu.Unlock()
		return store, nil
	})
	return v.(*Store)
}

// Drop forgets the in-memory store for a session. Persisted state is left
// to the store itself.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}

// StartSweeper runs the fixed-interval expiration check until ctx is
// cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = SweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep(ctx)
			case <-ctx.Done():
				slog.Info("cart sweeper stopped")
				return
			}
		}
	}()
}

func (m *Manager) sweep(ctx context.Context) {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, store := range m.stores {
		stores = append(stores, store)
	}
	m.mu.Unlock()

	for _, store := range stores {
		store.Expire(ctx)
	}
}
