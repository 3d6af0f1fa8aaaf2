package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dongju2-lee/sample-micro-app/internal/order/application"
	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
	"github.com/dongju2-lee/sample-micro-app/pkg/fault"
	"github.com/dongju2-lee/sample-micro-app/pkg/idempotency"
)

// OrderService is the slice of the saga service the HTTP layer needs.
type OrderService interface {
	Place(ctx context.Context, credential string, req application.PlaceRequest) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	Cancel(ctx context.Context, id string) (domain.Order, error)
}

type Handler struct {
	log     *slog.Logger
	service OrderService
	faults  *fault.Config
	idem    *idempotency.Store // nil disables duplicate suppression
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service OrderService, faults *fault.Config, idem *idempotency.Store) *Handler {
	return &Handler{
		log:     log,
		service: service,
		faults:  faults,
		idem:    idem,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Post("/chaos/payment_fail", h.setPaymentFailRate)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	credential, ok := bearerToken(r)
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}

	var req application.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "invalid body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "items required"})
		return
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" && h.idem != nil {
		seen, err := h.idem.Seen(ctx, h.idem.Key("orders", key))
		if err != nil {
			h.log.Warn("idempotency check failed", "err", err)
		} else if seen {
			writeError(w, domain.ErrDuplicateRequest)
			return
		}
	}

	o, err := h.service.Place(ctx, credential, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	o, err := h.service.Cancel(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type paymentFailConfig struct {
	FailPercent int `json:"fail_percent"`
}

func (h *Handler) setPaymentFailRate(w http.ResponseWriter, r *http.Request) {
	var cfg paymentFailConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "invalid body"})
		return
	}
	if cfg.FailPercent < 0 || cfg.FailPercent > 100 {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "fail_percent must be 0-100"})
		return
	}
	h.faults.SetFailPercent(fault.Payment, cfg.FailPercent)
	h.log.Info("payment fail rate updated", "fail_percent", cfg.FailPercent)
	writeJSON(w, http.StatusOK, map[string]any{"message": "payment failure rate updated", "fail_percent": cfg.FailPercent})
}

type errorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, domain.HTTPStatus(err), errorBody{Reason: domain.Reason(err), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
