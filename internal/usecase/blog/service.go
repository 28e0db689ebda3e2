package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainAccount "github.com/noobLue/fullstack5pw/internal/domain/account"
	domainBlog "github.com/noobLue/fullstack5pw/internal/domain/blog"
	"github.com/noobLue/fullstack5pw/internal/domain/repository"
)

// ListInvalidator drops cached ordered lists after a committed mutation.
type ListInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Recorder observes blog mutations.
type Recorder interface {
	BlogCreated()
	BlogLiked()
	BlogDeleted()
}

// Service owns the blog lifecycle and the delete ownership check.
type Service struct {
	repo    repository.BlogRepository
	lists   ListInvalidator
	metrics Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// CreateParams carries the submitted blog fields.
type CreateParams struct {
	Title  string
	Author string
	URL    string
}

// NewService creates a blog service. lists and metrics may be nil.
func NewService(repo repository.BlogRepository, lists ListInvalidator, metrics Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		lists:   lists,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new blog owned by the caller.
func (s *Service) Create(ctx context.Context, caller domainAccount.Caller, params CreateParams) (*domainBlog.Blog, error) {
	if caller.IsAnonymous() {
		return nil, domainAccount.ErrUnauthenticated
	}
	acc := caller.Account()
	b, err := domainBlog.New(domainBlog.Params{
		Title:  params.Title,
		Author: params.Author,
		URL:    params.URL,
		Owner: domainBlog.Owner{
			ID:       acc.ID,
			Username: acc.Username,
			Name:     acc.Name,
		},
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}

	s.invalidate(ctx)
	if s.metrics != nil {
		s.metrics.BlogCreated()
	}
	s.logger.Info("blog created", "blog_id", b.ID, "account_id", acc.ID)
	return b, nil
}

// Get returns a single blog.
func (s *Service) Get(ctx context.Context, id domainBlog.ID) (*domainBlog.Blog, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, wrapRepoError("get blog", err)
	}
	return b, nil
}

// Like adds one like and returns the updated blog.
func (s *Service) Like(ctx context.Context, caller domainAccount.Caller, id domainBlog.ID) (*domainBlog.Blog, error) {
	if caller.IsAnonymous() {
		return nil, domainAccount.ErrUnauthenticated
	}
	b, err := s.repo.IncrementLikes(ctx, id)
	if err != nil {
		return nil, wrapRepoError("like blog", err)
	}

	s.invalidate(ctx)
	if s.metrics != nil {
		s.metrics.BlogLiked()
	}
	return b, nil
}

// Delete removes a blog. Only the account that created it may do so.
func (s *Service) Delete(ctx context.Context, caller domainAccount.Caller, id domainBlog.ID) error {
	if caller.IsAnonymous() {
		return domainAccount.ErrUnauthenticated
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return wrapRepoError("get blog", err)
	}
	// Owner never changes after creation, so checking before the delete is safe.
	if !b.OwnedBy(caller.ID()) {
		s.logger.Warn("blog delete forbidden", "blog_id", id, "account_id", caller.ID())
		return domainBlog.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoError("delete blog", err)
	}

	s.invalidate(ctx)
	if s.metrics != nil {
		s.metrics.BlogDeleted()
	}
	s.logger.Info("blog deleted", "blog_id", id, "account_id", caller.ID())
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.lists == nil {
		return
	}
	if err := s.lists.Invalidate(ctx); err != nil {
		s.logger.Error("invalidate blog list cache", "error", err)
	}
}

func wrapRepoError(op string, err error) error {
	if errors.Is(err, domainBlog.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
