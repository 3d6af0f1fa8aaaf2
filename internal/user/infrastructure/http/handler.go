package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dongju2-lee/sample-micro-app/internal/user/application"
	"github.com/dongju2-lee/sample-micro-app/internal/user/domain"
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
		tracer:  otel.Tracer("user-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(h.injectedFaults)
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Post("/validate", h.validate)
	})

	r.Post("/chaos/delay", h.setDelay)
	r.Post("/chaos/error", h.setError)

	return r
}

// injectedFaults applies the configured chaos delay and forced-error mode to
// every identity endpoint. Settings are read per request so a chaos update
// takes effect immediately.
func (h *Handler) injectedFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set := h.faults.Get(fault.Identity)
		if set.Delay > 0 {
			if err := fault.Sleep(r.Context(), set.Delay); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, errorBody{Reason: "UPSTREAM_UNAVAILABLE", Message: "request cancelled during injected delay"})
				return
			}
		}
		if set.ErrorOn {
			writeJSON(w, http.StatusInternalServerError, errorBody{Reason: "INTERNAL", Message: "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Signup")
	defer span.End()

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "username and password are required"})
		return
	}
	u, err := h.service.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "invalid request body"})
		return
	}
	token, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

type validateResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ValidateToken")
	defer span.End()

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Reason: "UNAUTHENTICATED", Message: "missing bearer token"})
		return
	}
	claims, err := h.service.Validate(ctx, token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{UserID: claims.UserID, Username: claims.Username})
}

type delayConfig struct {
	DelayMS int64 `json:"delay_ms"`
}

func (h *Handler) setDelay(w http.ResponseWriter, r *http.Request) {
	var cfg delayConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil || cfg.DelayMS < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "delay_ms must be a non-negative integer"})
		return
	}
	h.faults.SetDelay(fault.Identity, time.Duration(cfg.DelayMS)*time.Millisecond)
	h.log.Info("identity delay updated", "delay_ms", cfg.DelayMS)
	writeJSON(w, http.StatusOK, map[string]any{"message": "identity delay updated", "delay_ms": cfg.DelayMS})
}

type errorConfig struct {
	Enable bool `json:"enable"`
}

func (h *Handler) setError(w http.ResponseWriter, r *http.Request) {
	var cfg errorConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Reason: "BAD_REQUEST", Message: "invalid request body"})
		return
	}
	h.faults.SetErrorOn(fault.Identity, cfg.Enable)
	h.log.Info("identity forced error updated", "enable", cfg.Enable)
	writeJSON(w, http.StatusOK, map[string]any{"message": "identity forced error updated", "enable": cfg.Enable})
}

type errorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, errorBody{Reason: "USERNAME_TAKEN", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Reason: "UNAUTHENTICATED", Message: err.Error()})
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Reason: "NOT_FOUND", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Reason: "INTERNAL", Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
