// Package application drives the order placement saga: credential check,
// per-item stock reservation, pricing, simulated payment and persistence,
// with explicit compensation of granted reservations on any mid-saga failure.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
)

const defaultCallTimeout = 5 * time.Second

type ItemRequest struct {
	MenuID   int64 `json:"menu_id"`
	Quantity int   `json:"quantity"`
}

type PlaceRequest struct {
	Items   []ItemRequest `json:"items"`
	Address string        `json:"address"`
	Phone   string        `json:"phone"`
}

type Service struct {
	log      *slog.Logger
	identity IdentityVerifier
	stock    StockLedger
	catalog  CatalogReader
	payment  PaymentGateway
	repo     OrderRepository
	cache    OrderCache
	tracer   trace.Tracer

	callTimeout time.Duration
	newID       func() string
}

func NewService(
	log *slog.Logger,
	identity IdentityVerifier,
	stock StockLedger,
	catalog CatalogReader,
	payment PaymentGateway,
	repo OrderRepository,
	cache OrderCache,
) *Service {
	return &Service{
		log:         log,
		identity:    identity,
		stock:       stock,
		catalog:     catalog,
		payment:     payment,
		repo:        repo,
		cache:       cache,
		tracer:      otel.Tracer("order-saga"),
		callTimeout: defaultCallTimeout,
		newID:       uuid.NewString,
	}
}

// reservation is one entry of the saga's undo log.
type reservation struct {
	menuID int64
	qty    int
}

// Place runs the full saga. On any failure after the credential check the
// order is persisted in its terminal FAILED state with the failure reason, so
// a later Get reflects the true outcome; the returned error carries the same
// reason for the caller. Granted reservations are always released before the
// error surfaces.
func (s *Service) Place(ctx context.Context, credential string, req PlaceRequest) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder")
	defer span.End()

	user, err := s.verify(ctx, credential)
	if err != nil {
		return domain.Order{}, err
	}

	items, err := mergeItems(req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	o := domain.NewOrder(s.newID(), user.UserID, nil, req.Address, req.Phone)

	granted, err := s.reserveAll(ctx, items)
	if err != nil {
		s.rollback(ctx, granted)
		return s.finishFailed(ctx, o, err)
	}

	lines, total, err := s.price(ctx, items)
	if err != nil {
		s.rollback(ctx, granted)
		return s.finishFailed(ctx, o, err)
	}
	o.Items = lines

	if err := s.charge(ctx, o.ID, total); err != nil {
		s.rollback(ctx, granted)
		return s.finishFailed(ctx, o, err)
	}

	if err := o.Confirm(total); err != nil {
		s.rollback(ctx, granted)
		return domain.Order{}, err
	}
	payload, _ := json.Marshal(domain.OrderConfirmed{
		OrderID: o.ID, UserID: o.UserID, TotalCents: o.TotalCents, Items: o.Items,
	})
	if err := s.repo.Save(ctx, o, domain.EventOrderConfirmed, payload); err != nil {
		s.rollback(ctx, granted)
		return domain.Order{}, fmt.Errorf("persist confirmed order: %w", domain.ErrUpstreamUnavailable)
	}

	if err := s.cache.Set(ctx, o); err != nil {
		s.log.Warn("order cache populate failed", "order_id", o.ID, "err", err)
	}
	s.log.Info("order confirmed", "order_id", o.ID, "user_id", o.UserID, "total_cents", o.TotalCents)
	return o, nil
}

// Get reads cache-first with store read-through.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	if o, ok, err := s.cache.Get(ctx, id); err == nil && ok {
		return o, nil
	} else if err != nil {
		s.log.Warn("order cache read failed", "order_id", id, "err", err)
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.cache.Set(ctx, o); err != nil {
		s.log.Warn("order cache populate failed", "order_id", id, "err", err)
	}
	return o, nil
}

// Cancel reverses a confirmed order: every line item quantity is released
// back to the ledger, then the terminal CANCELLED status is persisted and the
// cache entry invalidated. Orders in any other state are rejected.
func (s *Service) Cancel(ctx context.Context, id string) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CancelOrder")
	defer span.End()

	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != domain.StatusConfirmed {
		return domain.Order{}, fmt.Errorf("cancel %s order %s: %w", o.Status, id, domain.ErrInvalidState)
	}

	for _, item := range o.Items {
		if _, err := s.stock.Release(ctx, item.MenuID, item.Quantity); err != nil {
			// Release cannot fail on valid input; an error here means the
			// collaborator is unreachable and the quantity must not be lost.
			s.log.Error("stock release failed during cancel", "order_id", id, "menu_id", item.MenuID, "err", err)
		}
	}

	if err := o.Cancel(); err != nil {
		return domain.Order{}, err
	}
	payload, _ := json.Marshal(domain.OrderCancelled{OrderID: o.ID, UserID: o.UserID})
	if err := s.repo.Save(ctx, o, domain.EventOrderCancelled, payload); err != nil {
		return domain.Order{}, fmt.Errorf("persist cancelled order: %w", domain.ErrUpstreamUnavailable)
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("order cache invalidate failed", "order_id", id, "err", err)
	}
	s.log.Info("order cancelled", "order_id", id)
	return o, nil
}

func (s *Service) verify(ctx context.Context, credential string) (UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	user, err := s.identity.Verify(ctx, credential)
	if err != nil {
		// Any identity failure aborts before side effects exist.
		return UserInfo{}, fmt.Errorf("verify credential: %w", domain.ErrUnauthenticated)
	}
	return user, nil
}

// reserveAll decrements stock item by item in ascending menu id order. The
// fixed ordering gives concurrent sagas over overlapping item sets a total
// lock order, so they cannot deadlock. The returned undo log holds every
// grant made before the error, if any.
func (s *Service) reserveAll(ctx context.Context, items []ItemRequest) ([]reservation, error) {
	granted := make([]reservation, 0, len(items))
	for _, item := range items {
		rctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		_, err := s.stock.Reserve(rctx, item.MenuID, item.Quantity)
		cancel()
		if err != nil {
			if errors.Is(err, domain.ErrOutOfStock) {
				return granted, fmt.Errorf("reserve item %d: %w", item.MenuID, domain.ErrOutOfStock)
			}
			return granted, fmt.Errorf("reserve item %d: %w", item.MenuID, domain.ErrUpstreamUnavailable)
		}
		granted = append(granted, reservation{menuID: item.MenuID, qty: item.Quantity})
	}
	return granted, nil
}

func (s *Service) price(ctx context.Context, items []ItemRequest) ([]domain.LineItem, int64, error) {
	lines := make([]domain.LineItem, 0, len(items))
	var total int64
	for _, item := range items {
		cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		entry, err := s.catalog.Menu(cctx, item.MenuID)
		cancel()
		if err != nil {
			return nil, 0, fmt.Errorf("price item %d: %w", item.MenuID, domain.ErrUpstreamUnavailable)
		}
		lines = append(lines, domain.LineItem{
			MenuID:     item.MenuID,
			Name:       entry.Name,
			Quantity:   item.Quantity,
			PriceCents: entry.PriceCents,
		})
		total += entry.PriceCents * int64(item.Quantity)
	}
	return lines, total, nil
}

func (s *Service) charge(ctx context.Context, orderID string, total int64) error {
	pctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if err := s.payment.Charge(pctx, orderID, total); err != nil {
		if errors.Is(err, domain.ErrPaymentDeclined) {
			return err
		}
		return fmt.Errorf("charge order %s: %w", orderID, domain.ErrUpstreamUnavailable)
	}
	return nil
}

// rollback releases every granted reservation. It runs on a context detached
// from the request's cancellation so compensation completes even when the
// caller has gone away.
func (s *Service) rollback(ctx context.Context, granted []reservation) {
	ctx = context.WithoutCancel(ctx)
	for _, g := range granted {
		rctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		_, err := s.stock.Release(rctx, g.menuID, g.qty)
		cancel()
		if err != nil {
			s.log.Error("compensation release failed", "menu_id", g.menuID, "qty", g.qty, "err", err)
		}
	}
}

// finishFailed persists the terminal FAILED state with its reason and returns
// the original error for the caller.
func (s *Service) finishFailed(ctx context.Context, o domain.Order, cause error) (domain.Order, error) {
	reason := domain.Reason(cause)
	if err := o.Fail(reason); err != nil {
		return domain.Order{}, err
	}
	payload, _ := json.Marshal(domain.OrderFailed{OrderID: o.ID, UserID: o.UserID, Reason: reason})
	if err := s.repo.Save(context.WithoutCancel(ctx), o, domain.EventOrderFailed, payload); err != nil {
		s.log.Error("persist failed order", "order_id", o.ID, "err", err)
	}
	s.log.Info("order failed", "order_id", o.ID, "reason", reason)
	return o, cause
}

// mergeItems collapses duplicate menu ids and sorts ascending so one saga
// never reserves the same row twice and all sagas share a single lock order.
func mergeItems(items []ItemRequest) ([]ItemRequest, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order has no items: %w", domain.ErrInvalidState)
	}
	byID := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %d has non-positive quantity: %w", item.MenuID, domain.ErrInvalidState)
		}
		byID[item.MenuID] += item.Quantity
	}
	merged := make([]ItemRequest, 0, len(byID))
	for id, qty := range byID {
		merged = append(merged, ItemRequest{MenuID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].MenuID < merged[j].MenuID })
	return merged, nil
}
