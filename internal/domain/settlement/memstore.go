package settlement

import (
	"context"
	"sync"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
)

type sessionKey struct {
	business id.ID
	session  id.ID
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[sessionKey]*Session)}
}

// Create implements SessionStore.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey{s.BusinessID, s.ID}
	if _, ok := m.sessions[key]; ok {
		return apperror.NewConflict("session already exists").WithDetail("id", s.ID.String())
	}
	s.Version = 1
	m.sessions[key] = s.Clone()
	return nil
}

// Get implements SessionStore.
func (m *MemoryStore) Get(_ context.Context, businessID, sessionID id.ID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionKey{businessID, sessionID}]
	if !ok {
		return nil, apperror.NewNotFound("session", sessionID.String())
	}
	return s.Clone(), nil
}

// Save implements SessionStore.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey{s.BusinessID, s.ID}
	cur, ok := m.sessions[key]
	if !ok {
		return apperror.NewNotFound("session", s.ID.String())
	}
	if cur.Version != s.Version {
		return apperror.NewConcurrentModification("session", s.ID.String())
	}
	s.Version++
	m.sessions[key] = s.Clone()
	return nil
}

// Delete implements SessionStore. Deleting a missing session is not an error.
func (m *MemoryStore) Delete(_ context.Context, businessID, sessionID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionKey{businessID, sessionID})
	return nil
}
