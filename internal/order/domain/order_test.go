package domain

import (
	"errors"
	"net/http"
	"testing"
)

func TestConfirmFromPending(t *testing.T) {
	o := NewOrder("o-1", 7, []LineItem{{MenuID: 1, Quantity: 2, PriceCents: 500}}, "addr", "010")
	if err := o.Confirm(1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusConfirmed || o.TotalCents != 1000 {
		t.Fatalf("got %s/%d", o.Status, o.TotalCents)
	}
}

func TestTerminalStatesAreSticky(t *testing.T) {
	tests := []struct {
		name string
		prep func(o *Order)
		op   func(o *Order) error
	}{
		{"confirm after fail", func(o *Order) { _ = o.Fail(ReasonOutOfStock) }, func(o *Order) error { return o.Confirm(100) }},
		{"fail after confirm", func(o *Order) { _ = o.Confirm(100) }, func(o *Order) error { return o.Fail(ReasonPaymentDeclined) }},
		{"cancel after fail", func(o *Order) { _ = o.Fail(ReasonPaymentDeclined) }, func(o *Order) error { return o.Cancel() }},
		{"cancel twice", func(o *Order) { _ = o.Confirm(100); _ = o.Cancel() }, func(o *Order) error { return o.Cancel() }},
		{"cancel pending", func(o *Order) {}, func(o *Order) error { return o.Cancel() }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := NewOrder("o-1", 7, nil, "addr", "010")
			tc.prep(&o)
			if err := tc.op(&o); !errors.Is(err, ErrInvalidState) {
				t.Fatalf("got %v, want ErrInvalidState", err)
			}
		})
	}
}

func TestCancelFromConfirmed(t *testing.T) {
	o := NewOrder("o-1", 7, nil, "addr", "010")
	if err := o.Confirm(100); err != nil {
		t.Fatal(err)
	}
	if err := o.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusCancelled {
		t.Fatalf("status = %s", o.Status)
	}
}

func TestReasonMapping(t *testing.T) {
	tests := []struct {
		err    error
		reason string
		status int
	}{
		{nil, "", http.StatusOK},
		{ErrUnauthenticated, ReasonUnauthenticated, http.StatusUnauthorized},
		{ErrOutOfStock, ReasonOutOfStock, http.StatusConflict},
		{ErrPaymentDeclined, ReasonPaymentDeclined, http.StatusPaymentRequired},
		{ErrUpstreamUnavailable, ReasonUpstreamUnavailable, http.StatusServiceUnavailable},
		{ErrNotFound, ReasonNotFound, http.StatusNotFound},
		{ErrInvalidState, ReasonInvalidState, http.StatusConflict},
		{errors.New("boom"), ReasonInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := Reason(tc.err); got != tc.reason {
			t.Errorf("Reason(%v) = %q, want %q", tc.err, got, tc.reason)
		}
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestWrappedErrorsKeepTheirReason(t *testing.T) {
	o := NewOrder("o-1", 7, nil, "addr", "010")
	_ = o.Fail(ReasonOutOfStock)
	err := o.Cancel()
	if Reason(err) != ReasonInvalidState {
		t.Fatalf("Reason(%v) = %q", err, Reason(err))
	}
}
