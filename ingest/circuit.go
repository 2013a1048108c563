package ingest

import (
	"sync"
	"time"
)

// circuitState is the explicit closed/open state machine gating
// outbound sends, per the design note calling for an explicit state
// machine rather than nested callbacks.
type circuitState struct {
	mu                  sync.Mutex
	open                bool
	openedAt            time.Time
	consecutiveFailures int
	threshold           int
	resetDelay          time.Duration
}

func newCircuitState(threshold int, resetDelay time.Duration) *circuitState {
	return &circuitState{threshold: threshold, resetDelay: resetDelay}
}

// isOpen reports whether the circuit currently blocks sends. If the
// reset interval has elapsed it transitions to closed and returns false.
func (c *circuitState) isOpen(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return false
	}
	if now.Sub(c.openedAt) >= c.resetDelay {
		c.open = false
		c.consecutiveFailures = 0
		return false
	}
	return true
}

// recordSuccess resets the failure counter and closes the circuit if open.
// Returns true if this call transitioned the circuit from open to closed.
func (c *circuitState) recordSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasOpen := c.open
	c.consecutiveFailures = 0
	c.open = false
	return wasOpen
}

// recordFailure increments the failure counter and opens the circuit
// if the threshold is reached. Returns true if this call transitioned
// the circuit from closed to open, plus the failure count at trip time.
func (c *circuitState) recordFailure(now time.Time) (tripped bool, failures int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures++
	if !c.open && c.consecutiveFailures >= c.threshold {
		c.open = true
		c.openedAt = now
		return true, c.consecutiveFailures
	}
	return false, c.consecutiveFailures
}

func (c *circuitState) snapshot() (open bool, failures int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open, c.consecutiveFailures
}
