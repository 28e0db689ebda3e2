// Package memory provides process-local implementations of the repository
// interfaces. They back the "memory" storage mode and the handler tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepository)(nil)

// AccountRepository keeps accounts in a map guarded by a single lock, so the
// username check and insert happen atomically.
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[account.ID]account.Account
	byUsername map[string]account.ID
}

// NewAccountRepository creates an empty repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[account.ID]account.Account),
		byUsername: make(map[string]account.ID),
	}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byUsername[a.Username]; taken {
		return account.ErrDuplicateUsername
	}
	r.byID[a.ID] = *a
	r.byUsername[a.Username] = a.ID
	return nil
}

// Get retrieves an account by ID.
func (r *AccountRepository) Get(ctx context.Context, id account.ID) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &a, nil
}

// GetByUsername retrieves an account by its handle.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, account.ErrNotFound
	}
	a := r.byID[id]
	return &a, nil
}

// Reset drops every account.
func (r *AccountRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.byID = make(map[account.ID]account.Account)
	r.byUsername = make(map[string]account.ID)
	r.mu.Unlock()
	return nil
}
