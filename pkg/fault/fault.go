// Package fault holds runtime-mutable fault-injection settings used to
// exercise failure handling: per-collaborator artificial latency and failure
// percentages. Settings are mutated through administrative endpoints and read
// fresh at every simulated call site.
package fault

import (
	"context"
	"sync"
	"time"
)

// Well-known collaborator keys.
const (
	Payment   = "payment"
	Inventory = "inventory"
	Identity  = "identity"
)

// Settings is one collaborator's injected behavior.
type Settings struct {
	Delay       time.Duration
	FailPercent int // 0-100
	ErrorOn     bool
}

// Config is a concurrency-safe registry of per-collaborator settings. The
// zero value is unusable; construct with New and pass the handle to whatever
// reads it. There is deliberately no package-level instance.
type Config struct {
	mu       sync.RWMutex
	settings map[string]Settings
}

func New() *Config {
	return &Config{settings: make(map[string]Settings)}
}

func (c *Config) Set(collaborator string, s Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings[collaborator] = s
}

// Get returns the current settings for a collaborator. Unknown collaborators
// yield the zero Settings, meaning no injected faults.
func (c *Config) Get(collaborator string) Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings[collaborator]
}

// SetDelay replaces only the injected latency, keeping other knobs.
func (c *Config) SetDelay(collaborator string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.settings[collaborator]
	s.Delay = d
	c.settings[collaborator] = s
}

// SetFailPercent replaces only the failure percentage, keeping other knobs.
func (c *Config) SetFailPercent(collaborator string, pct int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.settings[collaborator]
	s.FailPercent = pct
	c.settings[collaborator] = s
}

// SetErrorOn toggles unconditional errors for a collaborator.
func (c *Config) SetErrorOn(collaborator string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.settings[collaborator]
	s.ErrorOn = on
	c.settings[collaborator] = s
}

// Sleep waits for d or returns early with the context error on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
