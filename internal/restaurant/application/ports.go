package application

import (
	"context"

	"github.com/dongju2-lee/sample-micro-app/internal/restaurant/domain"
)

type MenuRepository interface {
	ListMenus(ctx context.Context) ([]domain.Menu, error)
	GetMenu(ctx context.Context, id int64) (domain.Menu, error)
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
}

// StockRepository owns the per-menu available-quantity counters. Reserve and
// Release are atomic per menu id; Reserve rejects a decrement that would go
// negative without mutating anything.
type StockRepository interface {
	Reserve(ctx context.Context, menuID int64, qty int) (int, error)
	Release(ctx context.Context, menuID int64, qty int) (int, error)
}

type MenuCache interface {
	GetAll(ctx context.Context) ([]domain.Menu, bool, error)
	SetAll(ctx context.Context, menus []domain.Menu) error
	GetOne(ctx context.Context, id int64) (domain.Menu, bool, error)
	SetOne(ctx context.Context, m domain.Menu) error
	InvalidateMenu(ctx context.Context, id int64) error
}
