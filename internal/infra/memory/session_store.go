package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions keyed by token hash.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]account.Session
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]account.Session),
		now:      time.Now,
	}
}

// Create stores s, replacing any session with the same hash.
func (s *SessionStore) Create(ctx context.Context, sess *account.Session) error {
	if sess == nil || sess.TokenHash == "" {
		return fmt.Errorf("session token hash is required")
	}
	s.mu.Lock()
	s.sessions[sess.TokenHash] = *sess
	s.mu.Unlock()
	return nil
}

// Get looks up a live session.
func (s *SessionStore) Get(ctx context.Context, tokenHash string) (*account.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[tokenHash]
	s.mu.RUnlock()
	if !ok || sess.Expired(s.now()) {
		return nil, account.ErrNoSuchSession
	}
	return &sess, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[tokenHash]
	if !ok {
		return account.ErrNoSuchSession
	}
	delete(s.sessions, tokenHash)
	if sess.Expired(s.now()) {
		return account.ErrNoSuchSession
	}
	return nil
}

// Reset drops every session.
func (s *SessionStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.sessions = make(map[string]account.Session)
	s.mu.Unlock()
	return nil
}

