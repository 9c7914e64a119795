package timer

import (
	"sync"
	"time"

	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/logger"
)

// AdvanceFunc fires the phase transition for the phase the timer was armed
// for. It must be a compare-and-set: returning false means the phase had
// already moved on and the firing was a no-op.
type AdvanceFunc func(from domain.Phase) (bool, error)

// Coordinator is the per-client scheduler that auto-advances timed phases.
// Only the client currently rendering the admin view runs one; everybody
// else derives a cosmetic countdown from the shared phase timestamp.
//
// The coordinator never trusts its own clock over the store: firing is
// gated by the engine's CAS, so a late timer from a reconnected admin
// device cannot re-apply a transition.
type Coordinator struct {
	advance AdvanceFunc

	mu       sync.Mutex
	timer    *time.Timer
	armedFor domain.Phase
	stopped  bool
}

func NewCoordinator(advance AdvanceFunc) *Coordinator {
	return &Coordinator{advance: advance}
}

// Observe is called with every propagated state change. It arms a timer for
// phases that auto-advance (role_assignment, location_reveal, interrogate)
// and cancels any timer belonging to a phase that is no longer current.
// remaining already accounts for time spent in the phase before this client
// observed it.
func (c *Coordinator) Observe(phase domain.Phase, remaining time.Duration, autoAdvance bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	if c.timer != nil && c.armedFor == phase {
		return
	}
	c.disarm()

	if !autoAdvance {
		return
	}
	if remaining < 0 {
		remaining = 0
	}

	c.armedFor = phase
	c.timer = time.AfterFunc(remaining, func() {
		c.fire(phase)
	})
}

func (c *Coordinator) fire(phase domain.Phase) {
	c.mu.Lock()
	if c.stopped || c.armedFor != phase {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.armedFor = ""
	c.mu.Unlock()

	applied, err := c.advance(phase)
	if err != nil {
		logger.Error("phase advance failed", "phase", string(phase), "error", err)
		return
	}
	if !applied {
		logger.Debug("stale timer firing ignored", "phase", string(phase))
	}
}

// Stop cancels any pending timer; called on view teardown and on admin
// disconnect. Cancellation never crosses devices.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.disarm()
}

func (c *Coordinator) disarm() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.armedFor = ""
}
