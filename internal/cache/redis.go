// Package cache provides Redis caching utilities for the application.
// The cache is strictly best-effort: a missing or unreachable Redis leaves
// every operation a no-op and reads fall through to the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"commons/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. A nil *Cache or a Cache without a live client
// is valid and disables caching.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at addr (plain host:port or a redis:// URL) and
// returns a Cache. Connection failures are logged and produce a disabled
// cache rather than an error.
func New(addr string) *Cache {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, continuing without cache", "addr", addr, "error", err)
			return &Cache{}
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without cache", "error", err)
		return &Cache{}
	}

	middleware.Logger.Info("Redis connected successfully")
	return &Cache{client: client}
}

// NewWithClient wraps an existing Redis client. Used by tests.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must write into
// dest), then stores the result with ttl. Cache errors degrade to a plain
// fetch; only fetch errors propagate.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = c.SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes a key. Best-effort.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c.enabled() {
		c.client.Del(ctx, key)
	}
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c.enabled() {
		return c.client.Close()
	}
	return nil
}
