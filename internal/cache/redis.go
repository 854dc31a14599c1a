// Package cache provides a shared TTL response cache over Redis, used
// by the read-heavy dashboard and environment endpoints so upstream
// providers are queried at most once per TTL across all replicas.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(name string) string {
	return fmt.Sprintf("envcache:%s", name)
}

// Get unmarshals a cached value into out. Redis being down reads as a
// miss; the caller recomputes and the service degrades, not fails.
func (c *Cache) Get(ctx context.Context, name string, out any) error {
	data, err := c.client.Get(ctx, c.key(name)).Bytes()
	if err != nil {
		return ErrMiss
	}
	if err := json.Unmarshal(data, out); err != nil {
		return ErrMiss
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(name), data, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, name string) error {
	return c.client.Del(ctx, c.key(name)).Err()
}
