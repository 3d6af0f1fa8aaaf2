package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
	"github.com/dongju2-lee/sample-micro-app/pkg/fault"
)

func TestChargeAlwaysFailsAtHundredPercent(t *testing.T) {
	cfg := fault.New()
	cfg.SetFailPercent(fault.Payment, 100)
	sim := NewPaymentSimulator(cfg)

	for i := 0; i < 50; i++ {
		err := sim.Charge(context.Background(), "o-1", 1000)
		if !errors.Is(err, domain.ErrPaymentDeclined) {
			t.Fatalf("attempt %d: got %v, want ErrPaymentDeclined", i, err)
		}
	}
}

func TestChargeNeverFailsAtZeroPercent(t *testing.T) {
	cfg := fault.New()
	sim := NewPaymentSimulator(cfg)

	for i := 0; i < 50; i++ {
		if err := sim.Charge(context.Background(), "o-1", 1000); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
}

func TestChargeReadsConfigFresh(t *testing.T) {
	cfg := fault.New()
	sim := NewPaymentSimulator(cfg)

	if err := sim.Charge(context.Background(), "o-1", 1000); err != nil {
		t.Fatalf("before: %v", err)
	}
	cfg.SetFailPercent(fault.Payment, 100)
	if err := sim.Charge(context.Background(), "o-1", 1000); !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("after: %v", err)
	}
}

func TestChargeThresholdBoundary(t *testing.T) {
	cfg := fault.New()
	cfg.SetFailPercent(fault.Payment, 50)
	sim := NewPaymentSimulator(cfg)

	sim.roll = func() int { return 50 }
	if err := sim.Charge(context.Background(), "o-1", 1000); !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("roll==threshold should decline, got %v", err)
	}
	sim.roll = func() int { return 51 }
	if err := sim.Charge(context.Background(), "o-1", 1000); err != nil {
		t.Fatalf("roll above threshold should pass, got %v", err)
	}
}

func TestChargeInjectedDelayRespectsCancellation(t *testing.T) {
	cfg := fault.New()
	cfg.SetDelay(fault.Payment, 10*time.Second)
	sim := NewPaymentSimulator(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := sim.Charge(ctx, "o-1", 1000)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("got %v, want ErrUpstreamUnavailable", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("charge blocked past context deadline")
	}
}
