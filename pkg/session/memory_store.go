package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store interface using in-memory storage
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	byAccount map[uuid.UUID]map[string]struct{}
	now       func() time.Time
	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions:  make(map[string]*Session),
		byAccount: make(map[uuid.UUID]map[string]struct{}),
		now:       time.Now,
		done:      make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

// Create stores a new session
func (m *MemoryStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" || session.AccountID == uuid.Nil {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.Token] = session.clone()
	tokens, ok := m.byAccount[session.AccountID]
	if !ok {
		tokens = make(map[string]struct{})
		m.byAccount[session.AccountID] = tokens
	}
	tokens[session.Token] = struct{}{}
	return nil
}

// Get retrieves a session by token
func (m *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[token]
	if !exists {
		m.mu.RUnlock()
		return nil, ErrSessionNotFound
	}
	if !session.Expired(m.now()) {
		defer m.mu.RUnlock()
		return session.clone(), nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// A concurrent Touch may have extended it in between.
	session, exists = m.sessions[token]
	if !exists {
		return nil, ErrSessionNotFound
	}
	if !session.Expired(m.now()) {
		return session.clone(), nil
	}
	m.remove(token)
	return nil, ErrSessionExpired
}

// Touch updates the last activity time and the expiry
func (m *MemoryStore) Touch(ctx context.Context, token string, lastActivity, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[token]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastActivityAt = lastActivity
	session.ExpiresAt = expiresAt
	return nil
}

// Delete removes a session by token
func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(token)
	return nil
}

// DeleteByAccount removes all sessions for a specific account
func (m *MemoryStore) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token := range m.byAccount[accountID] {
		delete(m.sessions, token)
	}
	delete(m.byAccount, accountID)
	return nil
}

// DeleteExpired removes all expired sessions
func (m *MemoryStore) DeleteExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for token, session := range m.sessions {
		if session.Expired(now) {
			m.remove(token)
		}
	}

	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
			close(m.done)
		}
	})
	return nil
}

// remove must be called with the write lock held.
func (m *MemoryStore) remove(token string) {
	session, ok := m.sessions[token]
	if !ok {
		return
	}
	delete(m.sessions, token)
	if tokens, ok := m.byAccount[session.AccountID]; ok {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(m.byAccount, session.AccountID)
		}
	}
}

// cleanupLoop runs periodic cleanup of expired sessions
func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}

var _ Store = (*MemoryStore)(nil)
