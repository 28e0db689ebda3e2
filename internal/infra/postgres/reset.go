package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

var _ repository.Resetter = (*Resetter)(nil)

// Resetter truncates every application table. Sequences keep counting, so
// blog seq values are never reused across resets.
type Resetter struct {
	pool *pgxpool.Pool
}

// NewResetter creates a Resetter.
func NewResetter(pool *pgxpool.Pool) *Resetter {
	return &Resetter{pool: pool}
}

// Reset removes all blogs and accounts in one statement.
func (r *Resetter) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE TABLE blogs, users`); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
