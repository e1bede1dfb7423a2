package cart

import (
	"context"
	"sync"

	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
)

// Keyer derives the persistence key for a session's cart snapshot.
type Keyer interface {
	CartKey(sessionID string) string
}

type identityKeyer struct{}

func (identityKeyer) CartKey(sessionID string) string { return "cart:" + sessionID }

// Manager owns one Store per active session. Stores are created (and
// restored from their persisted snapshot) on first access and discarded
// at logout via Drop.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*sessionEntry

	persist Persistence
	keys    Keyer
	logg    *logger.Logger
}

// sessionEntry gates a store behind its one-time restore so no caller
// can mutate the cart before the persisted snapshot is loaded.
type sessionEntry struct {
	restored sync.Once
	store    *Store
}

// ManagerOptions configure the session cart manager.
type ManagerOptions struct {
	Persistence Persistence
	Keyer       Keyer
	Logger      *logger.Logger
}

// NewManager builds a session cart manager. Persistence may be nil for
// in-memory-only operation.
func NewManager(opts ManagerOptions) *Manager {
	keys := opts.Keyer
	if keys == nil {
		keys = identityKeyer{}
	}
	return &Manager{
		stores:  map[string]*sessionEntry{},
		persist: opts.Persistence,
		keys:    keys,
		logg:    opts.Logger,
	}
}

// Get returns the session's cart store, creating and restoring it on
// first access. Concurrent callers for the same session all wait on the
// restore, so a mutation can never race the snapshot load.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	entry, ok := m.stores[sessionID]
	if !ok {
		entry = &sessionEntry{store: NewStore(StoreOptions{
			SessionKey:  m.keys.CartKey(sessionID),
			Persistence: m.persist,
			Logger:      m.logg,
		})}
		m.stores[sessionID] = entry
	}
	m.mu.Unlock()

	entry.restored.Do(func() {
		entry.store.restore(ctx)
	})
	return entry.store
}

// Drop discards the session's cart and deletes its persisted snapshot.
// Called at logout; a dropped session must not resurrect its cart.
func (m *Manager) Drop(ctx context.Context, sessionID string) {
	m.mu.Lock()
	delete(m.stores, sessionID)
	m.mu.Unlock()

	if m.persist == nil {
		return
	}
	if err := m.persist.Delete(ctx, m.keys.CartKey(sessionID)); err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "cart.snapshot.delete", err)
		}
	}
}
