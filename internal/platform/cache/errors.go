package cache

import "errors"

// ErrCacheMiss reports a key that is absent or has expired. Callers treat it
// as "recompute", never as a failure.
var ErrCacheMiss = errors.New("cache miss")
