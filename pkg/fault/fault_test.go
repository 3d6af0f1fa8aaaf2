package fault

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGetUnknownCollaborator(t *testing.T) {
	cfg := New()
	got := cfg.Get("nope")
	if got.Delay != 0 || got.FailPercent != 0 || got.ErrorOn {
		t.Fatalf("expected zero settings, got %+v", got)
	}
}

func TestPartialUpdatesKeepOtherKnobs(t *testing.T) {
	cfg := New()
	cfg.SetDelay(Inventory, 150*time.Millisecond)
	cfg.SetFailPercent(Inventory, 30)
	cfg.SetErrorOn(Inventory, true)

	got := cfg.Get(Inventory)
	if got.Delay != 150*time.Millisecond {
		t.Errorf("delay = %v, want 150ms", got.Delay)
	}
	if got.FailPercent != 30 {
		t.Errorf("fail percent = %d, want 30", got.FailPercent)
	}
	if !got.ErrorOn {
		t.Error("error toggle lost")
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	cfg := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(pct int) {
			defer wg.Done()
			cfg.SetFailPercent(Payment, pct%101)
		}(i)
		go func() {
			defer wg.Done()
			s := cfg.Get(Payment)
			if s.FailPercent < 0 || s.FailPercent > 100 {
				t.Errorf("torn read: %d", s.FailPercent)
			}
		}()
	}
	wg.Wait()
}

func TestSleepZeroReturnsImmediately(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSleepHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := Sleep(ctx, 5*time.Second)
	if err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleep did not return promptly on cancellation")
	}
}
