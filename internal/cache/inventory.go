package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bloglist/internal/middleware"
	"bloglist/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	BlogKeyPrefix = "blog:%d"
	BlogListKey   = "blogs:all"
	// GenerationKey is bumped by every invalidation. A fill only lands when the
	// generation it read before fetching is still current.
	GenerationKey = "cache:blogs:generation"
)

const (
	BlogTTL     = 30 * time.Minute
	BlogListTTL = 5 * time.Minute
)

func BlogKey(blogID uint) string {
	return fmt.Sprintf(BlogKeyPrefix, blogID)
}

// Cache is a JSON read-through cache over Redis. A Cache built from a nil client is a
// no-op: every lookup misses and every write is dropped.
type Cache struct {
	client *redis.Client
}

// New wraps client, which may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON loads key into dest. It returns (false, nil) on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// Aside serves key from Redis when present; otherwise fetch fills dest and the result
// is stored with ttl unless an invalidation ran while fetch was reading. Cache failures
// degrade to calling fetch.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	}

	fill := false
	var gen int64
	if c.Enabled() {
		observability.CacheLookups.WithLabelValues("miss").Inc()
		// Read before fetch so a write committed during fetch is always noticed.
		if gen, err = c.generation(ctx, c.client); err == nil {
			fill = true
		}
	}

	if err := fetch(); err != nil {
		return err
	}
	if !fill {
		return nil
	}

	stored, err := c.setIfCurrent(ctx, key, dest, ttl, gen)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if !stored {
		observability.CacheLookups.WithLabelValues("stale_fill").Inc()
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Cache) generation(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// setIfCurrent stores v under key only while the generation still equals gen.
func (c *Cache) setIfCurrent(ctx context.Context, key string, v any, ttl time.Duration, gen int64) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, GenerationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate bumps the generation and deletes keys in one transaction. Errors are
// logged, not returned.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// InvalidateBlog drops the cached blog and the cached list.
func (c *Cache) InvalidateBlog(ctx context.Context, blogID uint) {
	c.Invalidate(ctx, BlogKey(blogID), BlogListKey)
}

// InvalidateBlogList drops the cached list.
func (c *Cache) InvalidateBlogList(ctx context.Context) {
	c.Invalidate(ctx, BlogListKey)
}

// Flush removes every key the cache owns.
func (c *Cache) Flush(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	keys, err := c.client.Keys(ctx, "blog*").Result()
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	return err
}
