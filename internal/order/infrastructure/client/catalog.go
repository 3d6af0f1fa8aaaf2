package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dongju2-lee/sample-micro-app/internal/order/application"
	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
	"github.com/dongju2-lee/sample-micro-app/pkg/tracing"
)

// CatalogClient is the order service's view of the restaurant service: menu
// reads for pricing and the reserve/release stock operations.
type CatalogClient struct {
	base string
	hc   *http.Client
}

func NewCatalogClient(base string) *CatalogClient {
	return &CatalogClient{
		base: base,
		hc:   &http.Client{Timeout: 5 * time.Second},
	}
}

type menuResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Available  bool   `json:"is_available"`
}

type inventoryUpdate struct {
	Quantity int `json:"quantity"`
}

type inventoryResponse struct {
	MenuID    int64 `json:"menu_id"`
	Remaining int   `json:"remaining_inventory"`
}

func (c *CatalogClient) Menu(ctx context.Context, menuID int64) (application.CatalogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/menus/%d", c.base, menuID), nil)
	if err != nil {
		return application.CatalogEntry{}, err
	}
	tracing.InjectHTTP(ctx, req.Header)

	resp, err := c.hc.Do(req)
	if err != nil {
		return application.CatalogEntry{}, fmt.Errorf("menu call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return application.CatalogEntry{}, fmt.Errorf("menu %d status %d: %w", menuID, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}
	var body menuResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return application.CatalogEntry{}, fmt.Errorf("menu decode: %w", err)
	}
	return application.CatalogEntry{
		MenuID:     body.ID,
		Name:       body.Name,
		PriceCents: body.PriceCents,
		Available:  body.Available,
	}, nil
}

func (c *CatalogClient) Reserve(ctx context.Context, menuID int64, qty int) (int, error) {
	return c.adjust(ctx, fmt.Sprintf("%s/inventory/%d", c.base, menuID), menuID, qty)
}

func (c *CatalogClient) Release(ctx context.Context, menuID int64, qty int) (int, error) {
	return c.adjust(ctx, fmt.Sprintf("%s/inventory/%d/restore", c.base, menuID), menuID, qty)
}

func (c *CatalogClient) adjust(ctx context.Context, url string, menuID int64, qty int) (int, error) {
	payload, err := json.Marshal(inventoryUpdate{Quantity: qty})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectHTTP(ctx, req.Header)

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("inventory call: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusConflict:
		return 0, fmt.Errorf("inventory %d: %w", menuID, domain.ErrOutOfStock)
	default:
		return 0, fmt.Errorf("inventory %d status %d: %w", menuID, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}
	var body inventoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("inventory decode: %w", err)
	}
	return body.Remaining, nil
}
