package cart

import "sync"

// Manager hands out one Cart per session key, creating and hydrating it
// from the store on first use.
type Manager struct {
	mu    sync.Mutex
	carts map[string]*Cart
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{
		carts: make(map[string]*Cart),
		store: store,
	}
}

func (m *Manager) Cart(sessionKey string) *Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.carts[sessionKey]; ok {
		return c
	}
	c := New(sessionKey, m.store)
	m.carts[sessionKey] = c
	return c
}

// Drop releases a session's cart at session end. The persisted mirror is
// left in place so a returning session rehydrates.
func (m *Manager) Drop(sessionKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionKey)
}
