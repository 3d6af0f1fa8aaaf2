package domain

// Lifecycle events written to the transactional outbox.
const (
	EventOrderConfirmed = "OrderConfirmed"
	EventOrderFailed    = "OrderFailed"
	EventOrderCancelled = "OrderCancelled"
)

type OrderConfirmed struct {
	OrderID    string     `json:"order_id"`
	UserID     int64      `json:"user_id"`
	TotalCents int64      `json:"total_cents"`
	Items      []LineItem `json:"items"`
}

type OrderFailed struct {
	OrderID string `json:"order_id"`
	UserID  int64  `json:"user_id"`
	Reason  string `json:"reason"`
}

type OrderCancelled struct {
	OrderID string `json:"order_id"`
	UserID  int64  `json:"user_id"`
}
