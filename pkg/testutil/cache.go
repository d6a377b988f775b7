package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/questx-lab/ledger/pkg/caching"
)

// MemoryCache is a caching.Cache kept in a map. Values are stored as json like the redis cache.
type MemoryCache struct {
	mutex  sync.Mutex
	values map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: map[string][]byte{}}
}

func (c *MemoryCache) Get(_ context.Context, key string, target any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	b, ok := c.values[key]
	if !ok {
		return caching.ErrCacheMiss
	}

	return json.Unmarshal(b, target)
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.values[key] = b
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.values, key)
	return nil
}
