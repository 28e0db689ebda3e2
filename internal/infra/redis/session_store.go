package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
	"github.com/noobLue/fullstack5pw/internal/platform/cache"
)

const sessionKeyPrefix = "session:"

var _ repository.SessionStore = (*SessionStore)(nil)

type sessionCacheClient interface {
	bytesCacheClient
	Delete(ctx context.Context, keys ...string) (int64, error)
	DeleteByPattern(ctx context.Context, pattern string, batchSize int64) (int64, error)
}

// SessionStore keeps sessions in Redis keyed by token hash. Keys expire with
// the session, so Redis does the cleanup.
type SessionStore struct {
	client sessionCacheClient
	now    func() time.Time
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client sessionCacheClient) *SessionStore {
	return &SessionStore{
		client: client,
		now:    time.Now,
	}
}

// Create stores a session until its expiry.
func (s *SessionStore) Create(ctx context.Context, sess *account.Session) error {
	if sess == nil || sess.TokenHash == "" {
		return fmt.Errorf("session token hash is required")
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return fmt.Errorf("session already expired")
		}
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(sess.TokenHash), payload, ttl)
}

// Get loads a live session.
func (s *SessionStore) Get(ctx context.Context, tokenHash string) (*account.Session, error) {
	payload, err := s.client.GetBytes(ctx, sessionKey(tokenHash))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, account.ErrNoSuchSession
		}
		return nil, err
	}
	var sess account.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, account.ErrNoSuchSession
	}
	return &sess, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	n, err := s.client.Delete(ctx, sessionKey(tokenHash))
	if err != nil {
		return err
	}
	if n == 0 {
		return account.ErrNoSuchSession
	}
	return nil
}

// Reset drops every session.
func (s *SessionStore) Reset(ctx context.Context) error {
	if _, err := s.client.DeleteByPattern(ctx, sessionKeyPrefix+"*", 0); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func sessionKey(tokenHash string) string {
	return sessionKeyPrefix + tokenHash
}
