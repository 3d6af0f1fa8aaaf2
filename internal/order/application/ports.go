package application

import (
	"context"

	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
)

// UserInfo is the identity verifier's view of an authenticated caller.
type UserInfo struct {
	UserID   int64
	Username string
}

// CatalogEntry is the catalog reader's view of one menu item.
type CatalogEntry struct {
	MenuID     int64
	Name       string
	PriceCents int64
	Available  bool
}

type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (UserInfo, error)
}

// StockLedger reserves and releases stock one item at a time. Reserve returns
// the remaining quantity after the decrement; Release never fails on valid
// input and is the saga's compensation primitive.
type StockLedger interface {
	Reserve(ctx context.Context, menuID int64, qty int) (int, error)
	Release(ctx context.Context, menuID int64, qty int) (int, error)
}

type CatalogReader interface {
	Menu(ctx context.Context, menuID int64) (CatalogEntry, error)
}

type PaymentGateway interface {
	Charge(ctx context.Context, orderID string, amountCents int64) error
}

// OrderRepository persists the order and its outbox event in one transaction.
type OrderRepository interface {
	Save(ctx context.Context, o domain.Order, eventType string, payload []byte) error
	Get(ctx context.Context, id string) (domain.Order, error)
}

type OrderCache interface {
	Get(ctx context.Context, id string) (domain.Order, bool, error)
	Set(ctx context.Context, o domain.Order) error
	Invalidate(ctx context.Context, id string) error
}
