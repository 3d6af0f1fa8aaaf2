package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
)

// DefaultTTL bounds the staleness of cached order reads; status-changing
// writes invalidate the key explicitly so the TTL is only a backstop.
const DefaultTTL = 5 * time.Minute

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(id string) string { return "order:" + id }

func (c *Cache) Get(ctx context.Context, id string) (domain.Order, bool, error) {
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("cache get: %w", err)
	}
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return domain.Order{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return o, true, nil
}

func (c *Cache) Set(ctx context.Context, o domain.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(o.ID), raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, key(id)).Err()
}
