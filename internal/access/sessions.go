package access

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one issued token.
type Session struct {
	Token     string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore is an in-process Provider for local runs and tests. It doubles
// as a service whose background worker evicts expired sessions.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	stopCh   chan struct{}
	wg       sync.WaitGroup
	interval time.Duration
	now      func() time.Time
}

func NewSessionStore(cfg map[string]interface{}) *SessionStore {
	interval := 10 * time.Minute
	if v, ok := cfg["cleanup_minutes"].(int); ok && v > 0 {
		interval = time.Duration(v) * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		stopCh:   make(chan struct{}),
		interval: interval,
		now:      time.Now,
	}
}

func (m *SessionStore) Name() string { return "access" }

func (m *SessionStore) Start() error {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.CleanupExpiredSessions()
			}
		}
	}()
	return nil
}

func (m *SessionStore) Stop() error {
	close(m.stopCh)
	m.wg.Wait()
	return nil
}

// CreateSession issues a token for id valid for duration.
func (m *SessionStore) CreateSession(id Identity, duration time.Duration) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		Token:     uuid.NewString(),
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
	m.sessions[s.Token] = s
	return s
}

func (m *SessionStore) DeleteSession(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// SetSubscription updates every live session of userID.
func (m *SessionStore) SetSubscription(userID string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Identity.UserID == userID {
			s.Identity.SubscriptionActive = active
		}
	}
}

func (m *SessionStore) Lookup(_ context.Context, token string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok || m.now().After(s.ExpiresAt) {
		return nil, ErrUnauthenticated
	}
	id := s.Identity
	return &id, nil
}

// CleanupExpiredSessions removes expired sessions and returns how many.
func (m *SessionStore) CleanupExpiredSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	now := m.now()
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, token)
			n++
		}
	}
	return n
}
