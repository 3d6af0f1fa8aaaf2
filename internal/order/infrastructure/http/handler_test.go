package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dongju2-lee/sample-micro-app/internal/order/application"
	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
	"github.com/dongju2-lee/sample-micro-app/pkg/fault"
)

type stubService struct {
	placed   domain.Order
	placeErr error
	got      domain.Order
	getErr   error
	cancel   domain.Order
	canErr   error

	lastCredential string
	lastRequest    application.PlaceRequest
}

func (s *stubService) Place(ctx context.Context, credential string, req application.PlaceRequest) (domain.Order, error) {
	s.lastCredential = credential
	s.lastRequest = req
	return s.placed, s.placeErr
}

func (s *stubService) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.got, s.getErr
}

func (s *stubService) Cancel(ctx context.Context, id string) (domain.Order, error) {
	return s.cancel, s.canErr
}

func newTestHandler(svc OrderService) (http.Handler, *fault.Config) {
	faults := fault.New()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, faults, nil)
	return h.Routes(), faults
}

func TestCreateOrderReturns201(t *testing.T) {
	svc := &stubService{placed: domain.Order{ID: "o-1", Status: domain.StatusConfirmed, TotalCents: 36000}}
	routes, _ := newTestHandler(svc)

	body := `{"items":[{"menu_id":1,"quantity":2}],"address":"a","phone":"p"}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok-123")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if svc.lastCredential != "tok-123" {
		t.Fatalf("credential = %q", svc.lastCredential)
	}
	var got domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "o-1" || got.Status != domain.StatusConfirmed {
		t.Fatalf("got %+v", got)
	}
}

func TestCreateOrderWithoutBearerIs401(t *testing.T) {
	routes, _ := newTestHandler(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[{"menu_id":1,"quantity":1}]}`))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Reason != domain.ReasonUnauthenticated {
		t.Fatalf("reason = %q", body.Reason)
	}
}

func TestCreateOrderErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		reason string
	}{
		{domain.ErrOutOfStock, http.StatusConflict, domain.ReasonOutOfStock},
		{domain.ErrPaymentDeclined, http.StatusPaymentRequired, domain.ReasonPaymentDeclined},
		{domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, domain.ReasonUpstreamUnavailable},
	}
	for _, tc := range tests {
		routes, _ := newTestHandler(&stubService{placeErr: tc.err})
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[{"menu_id":1,"quantity":1}]}`))
		req.Header.Set("Authorization", "Bearer t")
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var body errorBody
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body.Reason != tc.reason {
			t.Errorf("%v: reason = %q, want %q", tc.err, body.Reason, tc.reason)
		}
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	routes, _ := newTestHandler(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[],"address":"a"}`))
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	routes, _ := newTestHandler(&stubService{getErr: domain.ErrNotFound})
	req := httptest.NewRequest(http.MethodGet, "/orders/xyz", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCancelInvalidStateIs409(t *testing.T) {
	routes, _ := newTestHandler(&stubService{canErr: domain.ErrInvalidState})
	req := httptest.NewRequest(http.MethodPost, "/orders/xyz/cancel", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChaosEndpointUpdatesFaultConfig(t *testing.T) {
	routes, faults := newTestHandler(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/chaos/payment_fail", strings.NewReader(`{"fail_percent":30}`))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := faults.Get(fault.Payment).FailPercent; got != 30 {
		t.Fatalf("fail percent = %d, want 30", got)
	}
}

func TestChaosEndpointRejectsOutOfRange(t *testing.T) {
	routes, faults := newTestHandler(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/chaos/payment_fail", strings.NewReader(`{"fail_percent":150}`))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := faults.Get(fault.Payment).FailPercent; got != 0 {
		t.Fatalf("fail percent mutated to %d", got)
	}
}
