// Package application exposes catalog reads through a read-through cache and
// mediates all stock mutations through the row-locked stock repository. No
// other component touches stock directly.
package application

import (
	"context"
	"log/slog"

	"github.com/dongju2-lee/sample-micro-app/internal/restaurant/domain"
)

type Service struct {
	log   *slog.Logger
	repo  MenuRepository
	stock StockRepository
	cache MenuCache
}

func NewService(log *slog.Logger, repo MenuRepository, stock StockRepository, cache MenuCache) *Service {
	return &Service{log: log, repo: repo, stock: stock, cache: cache}
}

func (s *Service) Menus(ctx context.Context) ([]domain.Menu, error) {
	if menus, ok, err := s.cache.GetAll(ctx); err == nil && ok {
		return menus, nil
	} else if err != nil {
		s.log.Warn("menu list cache read failed", "err", err)
	}

	menus, err := s.repo.ListMenus(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAll(ctx, menus); err != nil {
		s.log.Warn("menu list cache populate failed", "err", err)
	}
	return menus, nil
}

func (s *Service) Menu(ctx context.Context, id int64) (domain.Menu, error) {
	if m, ok, err := s.cache.GetOne(ctx, id); err == nil && ok {
		return m, nil
	} else if err != nil {
		s.log.Warn("menu cache read failed", "menu_id", id, "err", err)
	}

	m, err := s.repo.GetMenu(ctx, id)
	if err != nil {
		return domain.Menu{}, err
	}
	if err := s.cache.SetOne(ctx, m); err != nil {
		s.log.Warn("menu cache populate failed", "menu_id", id, "err", err)
	}
	return m, nil
}

func (s *Service) Restaurants(ctx context.Context) ([]domain.Restaurant, error) {
	return s.repo.ListRestaurants(ctx)
}

// Reserve decrements stock and drops the now-stale menu cache entries.
func (s *Service) Reserve(ctx context.Context, menuID int64, qty int) (int, error) {
	remaining, err := s.stock.Reserve(ctx, menuID, qty)
	if err != nil {
		return remaining, err
	}
	if err := s.cache.InvalidateMenu(ctx, menuID); err != nil {
		s.log.Warn("menu cache invalidate failed", "menu_id", menuID, "err", err)
	}
	s.log.Info("stock reserved", "menu_id", menuID, "qty", qty, "remaining", remaining)
	return remaining, nil
}

// Release restores stock; it is the compensation primitive and has no upper
// bound check.
func (s *Service) Release(ctx context.Context, menuID int64, qty int) (int, error) {
	remaining, err := s.stock.Release(ctx, menuID, qty)
	if err != nil {
		return remaining, err
	}
	if err := s.cache.InvalidateMenu(ctx, menuID); err != nil {
		s.log.Warn("menu cache invalidate failed", "menu_id", menuID, "err", err)
	}
	s.log.Info("stock released", "menu_id", menuID, "qty", qty, "remaining", remaining)
	return remaining, nil
}
