package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noobLue/fullstack5pw/internal/domain/blog"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

var _ repository.BlogRepository = (*BlogRepository)(nil)

// BlogRepository keeps blogs in a map. Every mutation, including the like
// increment and seq assignment, runs under the write lock.
type BlogRepository struct {
	mu    sync.RWMutex
	blogs map[blog.ID]*blog.Blog
	// seq survives Reset so creation markers are never reused.
	seq int64
}

// NewBlogRepository creates an empty repository.
func NewBlogRepository() *BlogRepository {
	return &BlogRepository{blogs: make(map[blog.ID]*blog.Blog)}
}

// Create inserts b and assigns the next creation marker.
func (r *BlogRepository) Create(ctx context.Context, b *blog.Blog) error {
	if b == nil {
		return fmt.Errorf("blog is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.blogs[b.ID]; exists {
		return fmt.Errorf("blog %s already exists", b.ID)
	}
	r.seq++
	b.Seq = r.seq
	r.blogs[b.ID] = b.Clone()
	return nil
}

// Get retrieves a blog by ID.
func (r *BlogRepository) Get(ctx context.Context, id blog.ID) (*blog.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blogs[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	return b.Clone(), nil
}

// List returns all blogs in ranking order.
func (r *BlogRepository) List(ctx context.Context) ([]*blog.Blog, error) {
	r.mu.RLock()
	out := make([]*blog.Blog, 0, len(r.blogs))
	for _, b := range r.blogs {
		out = append(out, b.Clone())
	}
	r.mu.RUnlock()

	blog.SortByRanking(out)
	return out, nil
}

// IncrementLikes adds one like.
func (r *BlogRepository) IncrementLikes(ctx context.Context, id blog.ID) (*blog.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blogs[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	b.Likes++
	return b.Clone(), nil
}

// Delete removes a blog by ID.
func (r *BlogRepository) Delete(ctx context.Context, id blog.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[id]; !ok {
		return blog.ErrNotFound
	}
	delete(r.blogs, id)
	return nil
}

// Reset drops every blog.
func (r *BlogRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.blogs = make(map[blog.ID]*blog.Blog)
	r.mu.Unlock()
	return nil
}
