package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noobLue/fullstack5pw/internal/domain/blog"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

var _ repository.BlogRepository = (*BlogRepository)(nil)

// blogColumns selects a blog joined with its owner. Queries alias blogs as b
// and users as u.
const blogColumns = `b.id, b.seq, b.title, b.author, b.url, b.likes, b.created_at, u.id, u.username, u.name`

// BlogRepository implements repository.BlogRepository backed by PostgreSQL.
type BlogRepository struct {
	pool *pgxpool.Pool
}

// NewBlogRepository creates a new BlogRepository.
func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// Create inserts a blog and fills in the seq assigned by the BIGSERIAL column.
func (r *BlogRepository) Create(ctx context.Context, b *blog.Blog) error {
	if b == nil {
		return fmt.Errorf("blog is nil")
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO blogs (id, title, author, url, likes, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING seq`

	err := r.pool.QueryRow(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.URL,
		b.Likes,
		b.Owner.ID,
		b.CreatedAt,
	).Scan(&b.Seq)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

// Get retrieves a blog by ID.
func (r *BlogRepository) Get(ctx context.Context, id blog.ID) (*blog.Blog, error) {
	query := `
SELECT ` + blogColumns + `
FROM blogs b
JOIN users u ON u.id = b.user_id
WHERE b.id = $1`

	return scanBlog(r.pool.QueryRow(ctx, query, id))
}

// List returns every blog ordered by likes desc, seq asc.
func (r *BlogRepository) List(ctx context.Context) ([]*blog.Blog, error) {
	query := `
SELECT ` + blogColumns + `
FROM blogs b
JOIN users u ON u.id = b.user_id
ORDER BY b.likes DESC, b.seq ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]*blog.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blogs: %w", err)
	}
	return blogs, nil
}

// IncrementLikes adds one like in a single statement so concurrent likes are
// never lost.
func (r *BlogRepository) IncrementLikes(ctx context.Context, id blog.ID) (*blog.Blog, error) {
	query := `
WITH b AS (
	UPDATE blogs
	SET likes = likes + 1
	WHERE id = $1
	RETURNING id, seq, title, author, url, likes, user_id, created_at
)
SELECT ` + blogColumns + `
FROM b
JOIN users u ON u.id = b.user_id`

	return scanBlog(r.pool.QueryRow(ctx, query, id))
}

// Delete removes a blog by ID.
func (r *BlogRepository) Delete(ctx context.Context, id blog.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

func scanBlog(row pgx.Row) (*blog.Blog, error) {
	b := &blog.Blog{}
	if err := row.Scan(
		&b.ID,
		&b.Seq,
		&b.Title,
		&b.Author,
		&b.URL,
		&b.Likes,
		&b.CreatedAt,
		&b.Owner.ID,
		&b.Owner.Username,
		&b.Owner.Name,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("scan blog: %w", err)
	}
	return b, nil
}
