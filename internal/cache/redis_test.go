package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, time.Minute), mr
}

type payload struct {
	AQI      int    `json:"aqi"`
	Category string `json:"category"`
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	in := payload{AQI: 87, Category: "Moderate"}
	if err := c.Set(ctx, "dashboard", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out payload
	if err := c.Get(ctx, "dashboard", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var out payload
	if err := c.Get(context.Background(), "absent", &out); err != ErrMiss {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "dashboard", payload{AQI: 87}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	var out payload
	if err := c.Get(ctx, "dashboard", &out); err != ErrMiss {
		t.Errorf("expired entry must miss, got %v", err)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "dashboard", payload{AQI: 87})
	if err := c.Invalidate(ctx, "dashboard"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	var out payload
	if err := c.Get(ctx, "dashboard", &out); err != ErrMiss {
		t.Error("invalidated entry must miss")
	}
}

func TestCacheRedisDownReadsAsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var out payload
	if err := c.Get(context.Background(), "dashboard", &out); err != ErrMiss {
		t.Errorf("redis failure must read as miss, got %v", err)
	}
}
