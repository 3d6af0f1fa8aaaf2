package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dongju2-lee/sample-micro-app/internal/restaurant/domain"
)

// Menu reads tolerate more staleness on the list than on single items.
const (
	listTTL = 10 * time.Second
	itemTTL = 30 * time.Second

	listKey = "all_menus"
)

type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func itemKey(id int64) string { return "menu:" + strconv.FormatInt(id, 10) }

func (c *Cache) GetAll(ctx context.Context) ([]domain.Menu, bool, error) {
	raw, err := c.rdb.Get(ctx, listKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var menus []domain.Menu
	if err := json.Unmarshal(raw, &menus); err != nil {
		return nil, false, err
	}
	return menus, true, nil
}

func (c *Cache) SetAll(ctx context.Context, menus []domain.Menu) error {
	raw, err := json.Marshal(menus)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey, raw, listTTL).Err()
}

func (c *Cache) GetOne(ctx context.Context, id int64) (domain.Menu, bool, error) {
	raw, err := c.rdb.Get(ctx, itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Menu{}, false, nil
	}
	if err != nil {
		return domain.Menu{}, false, err
	}
	var m domain.Menu
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Menu{}, false, err
	}
	return m, true, nil
}

func (c *Cache) SetOne(ctx context.Context, m domain.Menu) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, itemKey(m.ID), raw, itemTTL).Err()
}

// InvalidateMenu drops both the item entry and the list so a stock change is
// visible on the next read.
func (c *Cache) InvalidateMenu(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, itemKey(id), listKey).Err()
}
