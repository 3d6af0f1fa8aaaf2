package domain

import (
	"errors"
	"time"
)

var (
	ErrMenuNotFound      = errors.New("menu not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Menu struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	ImageURL     string    `json:"image_url,omitempty"`
	Available    bool      `json:"is_available"`
	Inventory    int       `json:"inventory"`
	CreatedAt    time.Time `json:"created_at"`
}

type Restaurant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
