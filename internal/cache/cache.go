// Package cache stores JSON-encoded values with a TTL. The weekly summary is
// the only consumer; redis is used when configured, otherwise an in-process cache.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
