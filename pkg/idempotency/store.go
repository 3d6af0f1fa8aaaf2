// Package idempotency suppresses duplicate order submissions: a client that
// retries POST /orders with the same Idempotency-Key within the TTL window is
// rejected instead of placing a second order.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(route, clientKey string) string {
	return fmt.Sprintf("idem:%s:%s", route, clientKey)
}

// Seen atomically records the key and reports whether it was already present.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
