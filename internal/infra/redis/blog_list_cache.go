package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/noobLue/fullstack5pw/internal/domain/blog"
	"github.com/noobLue/fullstack5pw/internal/platform/cache"
)

const (
	blogListGenerationKey = "blogs:gen"
	blogListKeyPrefix     = "blogs:list:"
)

type listCacheClient interface {
	bytesCacheClient
	Get(ctx context.Context, key string) (string, error)
	Increment(ctx context.Context, key string) (int64, error)
	DeleteByPattern(ctx context.Context, pattern string, batchSize int64) (int64, error)
}

// BlogListCache stores the ordered blog list under a generation counter.
// Every mutation bumps the counter, so a reader never sees a list cached
// before the latest committed change.
type BlogListCache struct {
	client listCacheClient
	store  *snappyJSONCache
}

// NewBlogListCache builds the cache (default TTL 30s when ttl<=0).
func NewBlogListCache(client listCacheClient, ttl time.Duration) *BlogListCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BlogListCache{
		client: client,
		store:  newSnappyJSONCache(client, ttl),
	}
}

// Generation returns the current list generation, 0 when never bumped.
func (c *BlogListCache) Generation(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, blogListGenerationKey)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return 0, nil
		}
		return 0, err
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse list generation %q: %w", raw, err)
	}
	return gen, nil
}

// Get returns the list cached for generation.
func (c *BlogListCache) Get(ctx context.Context, generation int64) ([]*blog.Blog, bool, error) {
	var blogs []*blog.Blog
	ok, err := c.store.Get(ctx, listKey(generation), &blogs)
	if err != nil || !ok {
		return nil, false, err
	}
	return blogs, true, nil
}

// Set caches blogs for generation.
func (c *BlogListCache) Set(ctx context.Context, generation int64, blogs []*blog.Blog) error {
	return c.store.Set(ctx, listKey(generation), blogs)
}

// Invalidate advances the generation. Older lists expire on their own TTL.
func (c *BlogListCache) Invalidate(ctx context.Context) error {
	if _, err := c.client.Increment(ctx, blogListGenerationKey); err != nil {
		return fmt.Errorf("bump list generation: %w", err)
	}
	return nil
}

// Reset drops every cached list and advances the generation.
func (c *BlogListCache) Reset(ctx context.Context) error {
	if _, err := c.client.DeleteByPattern(ctx, blogListKeyPrefix+"*", 0); err != nil {
		return fmt.Errorf("delete cached lists: %w", err)
	}
	return c.Invalidate(ctx)
}

func listKey(generation int64) string {
	return blogListKeyPrefix + strconv.FormatInt(generation, 10)
}
