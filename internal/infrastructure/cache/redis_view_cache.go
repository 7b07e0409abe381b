package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultViewKeyPrefix = "view:"

// RedisViewCache implements shared.ViewCache with one Redis hash per path.
// Hash fields are the variants, so invalidating a path is a single DEL. The
// generation of a path is a counter key next to the hash; Set watches it so a
// concurrent Invalidate aborts the write. The client is owned by the caller.
type RedisViewCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisViewCache creates a view cache on an existing Redis client
func NewRedisViewCache(client *redis.Client, keyPrefix string) *RedisViewCache {
	if keyPrefix == "" {
		keyPrefix = defaultViewKeyPrefix
	}
	return &RedisViewCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisViewCache) key(path string) string {
	return c.keyPrefix + path
}

func (c *RedisViewCache) genKey(path string) string {
	return c.keyPrefix + "gen:" + path
}

// getter is satisfied by both *redis.Client and a watched *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *RedisViewCache) generation(ctx context.Context, getter getter, path string) (uint64, error) {
	gen, err := getter.Get(ctx, c.genKey(path)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read view generation %s: %w", path, err)
	}
	return gen, nil
}

// Generation returns the current generation of path
func (c *RedisViewCache) Generation(ctx context.Context, path string) (uint64, error) {
	return c.generation(ctx, c.client, path)
}

// Get returns the cached payload for path and variant
func (c *RedisViewCache) Get(ctx context.Context, path, variant string) ([]byte, bool, error) {
	value, err := c.client.HGet(ctx, c.key(path), variant).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached view %s: %w", path, err)
	}
	return value, true, nil
}

// Set stores a payload for path and variant unless path has moved past
// generation. The TTL applies to the whole path and is refreshed on every write.
func (c *RedisViewCache) Set(ctx context.Context, path, variant string, value []byte, ttl time.Duration, generation uint64) (bool, error) {
	key := c.key(path)
	stored := false
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, path)
		if err != nil {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, variant, value)
			pipe.Expire(ctx, key, ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.genKey(path))
	if errors.Is(err, redis.TxFailedErr) {
		// Invalidated while writing
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to cache view %s: %w", path, err)
	}
	return stored, nil
}

// Invalidate drops every cached variant of path and advances its generation
func (c *RedisViewCache) Invalidate(ctx context.Context, path string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(path))
		pipe.Incr(ctx, c.genKey(path))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate view %s: %w", path, err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (c *RedisViewCache) Close() error {
	return nil
}

// Ensure RedisViewCache implements ViewCache
var _ shared.ViewCache = (*RedisViewCache)(nil)
