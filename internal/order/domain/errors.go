package domain

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated     = errors.New("invalid or missing credential")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrUpstreamUnavailable = errors.New("upstream collaborator unavailable")
	ErrNotFound            = errors.New("order not found")
	ErrInvalidState        = errors.New("invalid order state")
	ErrDuplicateRequest    = errors.New("duplicate request")
)

// Machine-readable reason strings carried in error bodies and persisted on
// failed orders.
const (
	ReasonUnauthenticated     = "UNAUTHENTICATED"
	ReasonOutOfStock          = "OUT_OF_STOCK"
	ReasonPaymentDeclined     = "PAYMENT_DECLINED"
	ReasonUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ReasonNotFound            = "NOT_FOUND"
	ReasonInvalidState        = "INVALID_STATE"
	ReasonDuplicateRequest    = "DUPLICATE_REQUEST"
	ReasonInternal            = "INTERNAL"
)

func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return ReasonUnauthenticated
	case errors.Is(err, ErrOutOfStock):
		return ReasonOutOfStock
	case errors.Is(err, ErrPaymentDeclined):
		return ReasonPaymentDeclined
	case errors.Is(err, ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return ReasonUpstreamUnavailable
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrInvalidState):
		return ReasonInvalidState
	case errors.Is(err, ErrDuplicateRequest):
		return ReasonDuplicateRequest
	default:
		return ReasonInternal
	}
}

func HTTPStatus(err error) int {
	switch Reason(err) {
	case "":
		return http.StatusOK
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonOutOfStock:
		return http.StatusConflict
	case ReasonPaymentDeclined:
		return http.StatusPaymentRequired
	case ReasonUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ReasonNotFound:
		return http.StatusNotFound
	case ReasonInvalidState:
		return http.StatusConflict
	case ReasonDuplicateRequest:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
