package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps encoded bytes so callers never share decoded values.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		m.c.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		m.c.Delete(key)
		return false, nil
	}
	return true, nil
}

func (m *MemoryCache) SetJSON(_ context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, b, ttl)
	return nil
}

func (m *MemoryCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}
