package ranking

import (
	"context"
	"fmt"
	"log/slog"

	domainBlog "github.com/noobLue/fullstack5pw/internal/domain/blog"
)

// Repository describes the blog listing required for ranking.
type Repository interface {
	List(ctx context.Context) ([]*domainBlog.Blog, error)
}

// ListCache stores ordered lists keyed by a generation that every committed
// mutation advances. A list cached under an older generation is never served.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64) ([]*domainBlog.Blog, bool, error)
	Set(ctx context.Context, generation int64, blogs []*domainBlog.Blog) error
}

// Service provides the ordered blog list.
type Service struct {
	repo   Repository
	cache  ListCache
	logger *slog.Logger
}

// NewService creates a ranking service. cache may be nil.
func NewService(repo Repository, cache ListCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// OrderedList returns every blog ordered by likes descending, then creation
// order ascending.
func (s *Service) OrderedList(ctx context.Context) ([]*domainBlog.Blog, error) {
	if s.cache == nil {
		return s.load(ctx)
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("blog list cache generation unavailable", "error", err)
		return s.load(ctx)
	}
	cached, ok, err := s.cache.Get(ctx, gen)
	if err != nil {
		s.logger.Warn("blog list cache read failed", "generation", gen, "error", err)
	}
	if ok {
		return cached, nil
	}

	blogs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, gen, blogs); err != nil {
		s.logger.Warn("blog list cache write failed", "generation", gen, "error", err)
	}
	return blogs, nil
}

func (s *Service) load(ctx context.Context) ([]*domainBlog.Blog, error) {
	blogs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	// Repositories already order their results; sorting again keeps the
	// contract independent of the store.
	domainBlog.SortByRanking(blogs)
	return blogs, nil
}
