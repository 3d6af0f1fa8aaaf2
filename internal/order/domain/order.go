package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// LineItem is immutable once attached to an order.
type LineItem struct {
	MenuID     int64  `json:"menu_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

type Order struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	Items      []LineItem `json:"items"`
	Address    string     `json:"address"`
	Phone      string     `json:"phone"`
	Status     Status     `json:"status"`
	FailReason string     `json:"fail_reason,omitempty"`
	TotalCents int64      `json:"total_cents"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewOrder(id string, userID int64, items []LineItem, address, phone string) Order {
	now := time.Now().UTC()
	return Order{
		ID:        id,
		UserID:    userID,
		Items:     items,
		Address:   address,
		Phone:     phone,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Confirm moves a pending order to its terminal success state and freezes the
// total. Only legal from PENDING.
func (o *Order) Confirm(totalCents int64) error {
	if o.Status != StatusPending {
		return fmt.Errorf("confirm from %s: %w", o.Status, ErrInvalidState)
	}
	o.Status = StatusConfirmed
	o.TotalCents = totalCents
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail moves a pending order to its terminal failure state with a reason.
func (o *Order) Fail(reason string) error {
	if o.Status != StatusPending {
		return fmt.Errorf("fail from %s: %w", o.Status, ErrInvalidState)
	}
	o.Status = StatusFailed
	o.FailReason = reason
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel is only legal from CONFIRMED; FAILED and CANCELLED are terminal.
func (o *Order) Cancel() error {
	if o.Status != StatusConfirmed {
		return fmt.Errorf("cancel from %s: %w", o.Status, ErrInvalidState)
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}
