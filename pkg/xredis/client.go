package xredis

import (
	"context"
	"time"

	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

type Client interface {
	Exist(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Sorted list
	ZAdd(ctx context.Context, key string, z ...redis.Z) error
	ZIncrBy(ctx context.Context, key string, incr int64, member string) error
	ZRevRangeWithScores(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
	ZRevRank(ctx context.Context, key string, member string) (uint64, error)

	// Set
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	// Redis returns the underlying client for libraries built on go-redis.
	Redis() *redis.Client
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        10,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Redis() *redis.Client {
	return c.redisClient
}

///// COMMON FEATURE
func (c *client) Exist(ctx context.Context, key string) (bool, error) {
	n, err := c.redisClient.Exists(ctx, key).Uint64()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (c *client) Del(ctx context.Context, key ...string) error {
	err := c.redisClient.Del(ctx, key...).Err()
	if err == nil || err == redis.Nil {
		return nil
	}

	return err
}

func (c *client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.redisClient.Expire(ctx, key, ttl).Err()
}

///// SORTED LIST
func (c *client) ZAdd(ctx context.Context, key string, z ...redis.Z) error {
	return c.redisClient.ZAdd(ctx, key, z...).Err()
}

func (c *client) ZIncrBy(ctx context.Context, key string, incr int64, member string) error {
	return c.redisClient.ZIncrBy(ctx, key, float64(incr), member).Err()
}

func (c *client) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	result := c.redisClient.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1))
	return result.Result()
}

func (c *client) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	return c.redisClient.ZRevRank(ctx, key, member).Uint64()
}

///// SET
func (c *client) SAdd(ctx context.Context, key string, members ...string) error {
	args := make([]any, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}

	return c.redisClient.SAdd(ctx, key, args...).Err()
}

func (c *client) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.redisClient.SMembers(ctx, key).Result()
}
