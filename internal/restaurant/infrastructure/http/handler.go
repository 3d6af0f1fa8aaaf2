package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dongju2-lee/sample-micro-app/internal/restaurant/application"
	"github.com/dongju2-lee/sample-micro-app/internal/restaurant/domain"
	"github.com/dongju2-lee/sample-micro-app/pkg/fault"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	faults  *fault.Config
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, faults *fault.Config) *Handler {
	return &Handler{
		log:     log,
		service: service,
		faults:  faults,
		tracer:  otel.Tracer("restaurant-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Get("/menus", h.listMenus)
	r.Get("/menus/{id}", h.getMenu)
	r.Get("/restaurants", h.listRestaurants)

	r.Route("/inventory", func(r chi.Router) {
		r.Use(h.injectedDelay)
		r.Put("/{id}", h.reserve)
		r.Put("/{id}/restore", h.release)
	})

	r.Post("/chaos/inventory_delay", h.setInventoryDelay)

	return r
}

// injectedDelay holds inventory requests for the configured chaos latency.
func (h *Handler) injectedDelay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := h.faults.Get(fault.Inventory).Delay; d > 0 {
			if err := fault.Sleep(r.Context(), d); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, errorBody{Reason: "UPSTREAM_UNAVAILABLE", Message: "request cancelled during injected delay"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) listMenus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListMenus")
	defer span.End()

	menus, err := h.service.Menus(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menus)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetMenu")
	defer span.End()

	id, err := menuID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "invalid menu id"})
		return
	}
	m, err := h.service.Menu(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.service.Restaurants(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

type inventoryUpdate struct {
	Quantity int `json:"quantity"`
}

type inventoryResponse struct {
	MenuID    int64 `json:"menu_id"`
	Remaining int   `json:"remaining_inventory"`
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ReserveStock")
	defer span.End()

	id, qty, ok := h.decodeInventory(w, r)
	if !ok {
		return
	}
	remaining, err := h.service.Reserve(ctx, id, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryResponse{MenuID: id, Remaining: remaining})
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ReleaseStock")
	defer span.End()

	id, qty, ok := h.decodeInventory(w, r)
	if !ok {
		return
	}
	remaining, err := h.service.Release(ctx, id, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryResponse{MenuID: id, Remaining: remaining})
}

func (h *Handler) decodeInventory(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	id, err := menuID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "invalid menu id"})
		return 0, 0, false
	}
	var upd inventoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil || upd.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "quantity must be a positive integer"})
		return 0, 0, false
	}
	return id, upd.Quantity, true
}

type inventoryDelayConfig struct {
	DelayMS int64 `json:"delay_ms"`
}

func (h *Handler) setInventoryDelay(w http.ResponseWriter, r *http.Request) {
	var cfg inventoryDelayConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil || cfg.DelayMS < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "delay_ms must be a non-negative integer"})
		return
	}
	h.faults.SetDelay(fault.Inventory, time.Duration(cfg.DelayMS)*time.Millisecond)
	h.log.Info("inventory delay updated", "delay_ms", cfg.DelayMS)
	writeJSON(w, http.StatusOK, map[string]any{"message": "inventory delay updated", "delay_ms": cfg.DelayMS})
}

type errorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMenuNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Reason: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, errorBody{Reason: "INSUFFICIENT_STOCK", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Reason: "INTERNAL", Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func menuID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
