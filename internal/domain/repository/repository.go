package repository

import (
	"context"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
	"github.com/noobLue/fullstack5pw/internal/domain/blog"
)

// AccountRepository defines storage operations for accounts.
type AccountRepository interface {
	// Create persists a new account. The uniqueness check and insert are atomic;
	// a taken username yields account.ErrDuplicateUsername.
	Create(ctx context.Context, a *account.Account) error
	Get(ctx context.Context, id account.ID) (*account.Account, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
}

// SessionStore keeps token-to-account bindings, keyed by token hash.
type SessionStore interface {
	Create(ctx context.Context, s *account.Session) error
	// Get returns account.ErrNoSuchSession for unknown or expired tokens.
	Get(ctx context.Context, tokenHash string) (*account.Session, error)
	// Delete returns account.ErrNoSuchSession when nothing was removed.
	Delete(ctx context.Context, tokenHash string) error
	Resetter
}

// BlogRepository defines storage operations for blogs.
type BlogRepository interface {
	// Create persists b and assigns b.Seq.
	Create(ctx context.Context, b *blog.Blog) error
	Get(ctx context.Context, id blog.ID) (*blog.Blog, error)
	// List returns every blog ordered by likes desc, seq asc.
	List(ctx context.Context) ([]*blog.Blog, error)
	// IncrementLikes atomically adds one like and returns the updated blog.
	IncrementLikes(ctx context.Context, id blog.ID) (*blog.Blog, error)
	// Delete returns blog.ErrNotFound when nothing was removed.
	Delete(ctx context.Context, id blog.ID) error
}

// Resetter wipes all state it owns. Used by the testing API and the admin CLI.
type Resetter interface {
	Reset(ctx context.Context) error
}
