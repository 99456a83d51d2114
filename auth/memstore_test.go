package auth

import (
	"context"
	"sync"
	"time"
)

// memStore is an in-memory Store for unit tests. The sqlite-backed
// implementation is covered in the sitedb package.
type memStore struct {
	mu       sync.Mutex
	users    map[string]User
	sessions map[string]Session
	attempts map[string]LoginAttempt
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]User{},
		sessions: map[string]Session{},
		attempts: map[string]LoginAttempt{},
	}
}

func (m *memStore) addUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Username] = u
}

func (m *memStore) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *memStore) attemptFor(address string) (LoginAttempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[address]
	return a, ok
}

func (m *memStore) FindUserByUsername(ctx context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memStore) FindSessionByID(ctx context.Context, id string) (Session, User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, User{}, ErrNotFound
	}
	for _, u := range m.users {
		if u.ID == s.UserID {
			return s, u, nil
		}
	}
	return Session{}, User{}, ErrNotFound
}

func (m *memStore) CreateSession(ctx context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *memStore) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.ExpiresAt = expiresAt
	m.sessions[id] = s
	return nil
}

func (m *memStore) DeleteSessionByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) FindLoginAttempt(ctx context.Context, address string) (LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[address]
	if !ok {
		return LoginAttempt{}, ErrNotFound
	}
	return a, nil
}

func (m *memStore) UpsertLoginAttempt(ctx context.Context, attempt LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[attempt.Address] = attempt
	return nil
}
