package application

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
	"github.com/dongju2-lee/sample-micro-app/pkg/fault"
)

// PaymentSimulator decides synthetic success or failure for the payment step.
// It reads the fault config on every call so a fail-rate change made through
// the chaos endpoint takes effect on the next charge, and draws one uniform
// sample per call. It is pure with respect to the amount.
type PaymentSimulator struct {
	cfg  *fault.Config
	roll func() int // 1..100
}

func NewPaymentSimulator(cfg *fault.Config) *PaymentSimulator {
	return &PaymentSimulator{
		cfg:  cfg,
		roll: func() int { return rand.Intn(100) + 1 },
	}
}

func (p *PaymentSimulator) Charge(ctx context.Context, orderID string, amountCents int64) error {
	set := p.cfg.Get(fault.Payment)
	if err := fault.Sleep(ctx, set.Delay); err != nil {
		return fmt.Errorf("payment wait: %w", domain.ErrUpstreamUnavailable)
	}
	if set.FailPercent > 0 && p.roll() <= set.FailPercent {
		return fmt.Errorf("charge %s for %d: %w", orderID, amountCents, domain.ErrPaymentDeclined)
	}
	return nil
}
