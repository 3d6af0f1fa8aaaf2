// Package memory is an in-process stock ledger and catalog backed by a keyed
// mutex: one lock per menu row, so reservations for the same menu serialize
// while different menus proceed independently. It honors the same contract as
// the Postgres repository and backs tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dongju2-lee/sample-micro-app/internal/restaurant/domain"
)

type row struct {
	mu   sync.Mutex
	menu domain.Menu
}

type Ledger struct {
	mu   sync.RWMutex // guards the rows map, not row contents
	rows map[int64]*row
}

func NewLedger(menus ...domain.Menu) *Ledger {
	l := &Ledger{rows: make(map[int64]*row, len(menus))}
	for _, m := range menus {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		m.Available = m.Inventory > 0
		l.rows[m.ID] = &row{menu: m}
	}
	return l
}

func (l *Ledger) get(menuID int64) (*row, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.rows[menuID]
	return r, ok
}

func (l *Ledger) Reserve(ctx context.Context, menuID int64, qty int) (int, error) {
	r, ok := l.get(menuID)
	if !ok {
		return 0, domain.ErrMenuNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.menu.Inventory < qty {
		return r.menu.Inventory, fmt.Errorf("menu %d has %d, want %d: %w", menuID, r.menu.Inventory, qty, domain.ErrInsufficientStock)
	}
	r.menu.Inventory -= qty
	r.menu.Available = r.menu.Inventory > 0
	return r.menu.Inventory, nil
}

func (l *Ledger) Release(ctx context.Context, menuID int64, qty int) (int, error) {
	r, ok := l.get(menuID)
	if !ok {
		return 0, domain.ErrMenuNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.menu.Inventory += qty
	r.menu.Available = true
	return r.menu.Inventory, nil
}

func (l *Ledger) ListMenus(ctx context.Context) ([]domain.Menu, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	menus := make([]domain.Menu, 0, len(l.rows))
	for _, r := range l.rows {
		r.mu.Lock()
		menus = append(menus, r.menu)
		r.mu.Unlock()
	}
	return menus, nil
}

func (l *Ledger) GetMenu(ctx context.Context, id int64) (domain.Menu, error) {
	r, ok := l.get(id)
	if !ok {
		return domain.Menu{}, domain.ErrMenuNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.menu, nil
}

func (l *Ledger) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	return nil, nil
}
