package caching

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = cache.ErrCacheMiss

type Cache interface {
	Get(ctx context.Context, key string, target any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UseCache reads key from the cache, or calls callback and stores its result on a miss. A
// failed Set does not fail the read.
func UseCache[T any](
	ctx context.Context, c Cache, key string, ttl time.Duration, callback func() (T, error),
) (T, error) {
	var v T
	err := c.Get(ctx, key, &v)
	if err == nil {
		return v, nil
	}

	if !errors.Is(err, ErrCacheMiss) {
		return v, err
	}

	v, err = callback()
	if err != nil {
		return v, err
	}

	//nolint:errcheck
	c.Set(ctx, key, v, ttl)
	return v, nil
}

type redisCache struct {
	instance *cache.Cache
}

func NewRedisCache(client redis.UniversalClient, withLocalCache bool) *redisCache {
	var localCache cache.LocalCache
	if withLocalCache {
		localCache = cache.NewTinyLFU(10000, time.Second)
	}

	return &redisCache{cache.New(&cache.Options{
		Redis:      client,
		LocalCache: localCache,
	})}
}

func (c *redisCache) Get(ctx context.Context, key string, target any) error {
	return c.instance.Get(ctx, key, target)
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.instance.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.instance.Delete(ctx, key)
}
