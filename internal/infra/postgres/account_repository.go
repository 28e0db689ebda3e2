package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

const pgUniqueViolation = "23505"

var _ repository.AccountRepository = (*AccountRepository)(nil)

// AccountRepository implements repository.AccountRepository backed by PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts a new account. The users_username_key constraint rejects
// duplicate handles atomically.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO users (id, username, name, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Username, a.Name, a.PasswordHash, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return account.ErrDuplicateUsername
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Get retrieves an account by ID.
func (r *AccountRepository) Get(ctx context.Context, id account.ID) (*account.Account, error) {
	const query = `
SELECT id, username, name, password_hash, created_at
FROM users
WHERE id = $1`

	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername retrieves an account by handle.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	const query = `
SELECT id, username, name, password_hash, created_at
FROM users
WHERE username = $1`

	return scanAccount(r.pool.QueryRow(ctx, query, username))
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	a := &account.Account{}
	if err := row.Scan(&a.ID, &a.Username, &a.Name, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
