package cache

import (
	"context"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/splice/pkg/errors"
)

// DefaultRedisPrefix prefixes every key a RedisCache writes.
const DefaultRedisPrefix = "splice:cache:"

// RedisCache stores entries as redis strings with native expiration.
type RedisCache struct {
	client *backend.Client
	prefix string
}

// NewRedisCache creates a cache over client. An empty prefix means
// DefaultRedisPrefix.
func NewRedisCache(client *backend.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the entry for key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == backend.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "get cache entry")
	}
	return val, true, nil
}

// Set stores data under key.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "set cache entry")
	}
	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete cache entry")
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
