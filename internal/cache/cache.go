package cache

import (
	"context"
	"time"
)

// Cache is the JSON read-through cache used on the session polling path.
// Implementations must treat corrupt entries as misses.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
