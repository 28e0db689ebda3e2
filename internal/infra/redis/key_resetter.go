package redis

import (
	"context"
	"fmt"
)

type patternDeleter interface {
	DeleteByPattern(ctx context.Context, pattern string, batchSize int64) (int64, error)
}

// KeyResetter clears Redis keys that belong to no store, such as the login
// rate limit windows.
type KeyResetter struct {
	client  patternDeleter
	pattern string
}

// NewKeyResetter deletes keys under prefix on Reset.
func NewKeyResetter(client patternDeleter, prefix string) *KeyResetter {
	return &KeyResetter{client: client, pattern: prefix + ":*"}
}

// Reset deletes every matching key.
func (r *KeyResetter) Reset(ctx context.Context) error {
	if _, err := r.client.DeleteByPattern(ctx, r.pattern, 0); err != nil {
		return fmt.Errorf("delete %s: %w", r.pattern, err)
	}
	return nil
}
