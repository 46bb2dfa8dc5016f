package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/fjod/go_restaurant/internal/storage"
	"github.com/fjod/go_restaurant/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Namespace prefixes every persisted cart key.
const Namespace = "restaurant_cart"

const loadTimeout = 5 * time.Second

var ErrNoSession = errors.New("cart: session id is required")

type entry struct {
	store    *Store
	lastUsed time.Time
}

// Manager hands out one Store per session, loading it from storage on first use.
type Manager struct {
	storage storage.Storage
	log     *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
	sfg    singleflight.Group // one snapshot load per session
}

func NewManager(st storage.Storage, log *slog.Logger) *Manager {
	return &Manager{
		storage: st,
		log:     logger.OrDefault(log),
		now:     time.Now,
		stores:  make(map[string]*entry),
	}
}

func Key(sessionID string) string {
	return Namespace + ":" + sessionID
}

// Session returns the cart for sessionID.
func (m *Manager) Session(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if s, ok := m.cached(sessionID); ok {
		return s, nil
	}

	v, _, _ := m.sfg.Do(sessionID, func() (interface{}, error) {
		if s, ok := m.cached(sessionID); ok {
			return s, nil
		}
		// the load outlives the request that triggered it
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		s := NewStore(loadCtx, m.storage, Key(sessionID), m.log)
		if s.loadErr != nil {
			// not cached, so the next request retries the load
			return s, nil
		}

		m.mu.Lock()
		m.stores[sessionID] = &entry{store: s, lastUsed: m.now()}
		m.mu.Unlock()
		return s, nil
	})
	return v.(*Store), nil
}

// Clear empties the session's cart, e.g. once its order was placed.
func (m *Manager) Clear(ctx context.Context, sessionID string) (domain.Cart, error) {
	s, err := m.Session(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.Clear(ctx), nil
}

// EvictIdle forgets in-memory carts unused for longer than idle. Their
// snapshots stay in storage and are reloaded on the next request.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.stores {
		if e.lastUsed.Before(cutoff) {
			delete(m.stores, id)
			n++
		}
	}
	return n
}

// RunEvictor calls EvictIdle every interval until ctx is done.
func (m *Manager) RunEvictor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.EvictIdle(idle); n > 0 {
				m.log.DebugContext(ctx, "evicted idle carts", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

func (m *Manager) cached(sessionID string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.stores[sessionID]
	if !ok {
		return nil, false
	}
	e.lastUsed = m.now()
	return e.store, true
}
