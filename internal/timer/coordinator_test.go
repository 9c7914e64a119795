package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"spyfall_webapp/internal/domain"
)

func countingAdvance(fired *atomic.Int64, applied bool) AdvanceFunc {
	return func(from domain.Phase) (bool, error) {
		fired.Add(1)
		return applied, nil
	}
}

func TestObserveFiresAfterRemaining(t *testing.T) {
	var fired atomic.Int64
	c := NewCoordinator(countingAdvance(&fired, true))
	defer c.Stop()

	c.Observe(domain.PhaseRoleAssignment, 20*time.Millisecond, true)

	deadline := time.After(time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timer never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := fired.Load(); got != 1 {
		t.Fatalf("advance fired %d times; want 1", got)
	}
}

func TestObserveSamePhaseDoesNotRearm(t *testing.T) {
	var fired atomic.Int64
	c := NewCoordinator(countingAdvance(&fired, true))
	defer c.Stop()

	// repeated store notifications for one phase must collapse into one timer
	c.Observe(domain.PhaseInterrogate, 30*time.Millisecond, true)
	c.Observe(domain.PhaseInterrogate, 30*time.Millisecond, true)
	c.Observe(domain.PhaseInterrogate, 30*time.Millisecond, true)

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("advance fired %d times; want 1", got)
	}
}

func TestObservePhaseChangeDisarms(t *testing.T) {
	var fired atomic.Int64
	c := NewCoordinator(countingAdvance(&fired, true))
	defer c.Stop()

	c.Observe(domain.PhaseRoleAssignment, 50*time.Millisecond, true)
	// the phase moved on before the timer fired; vote does not auto-advance
	c.Observe(domain.PhaseVote, 0, false)

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("advance fired %d times after disarm; want 0", got)
	}
}

func TestStopCancelsPending(t *testing.T) {
	var fired atomic.Int64
	c := NewCoordinator(countingAdvance(&fired, true))

	c.Observe(domain.PhaseLocationReveal, 30*time.Millisecond, true)
	c.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("advance fired %d times after Stop; want 0", got)
	}

	// a stopped coordinator ignores later observations
	c.Observe(domain.PhaseInterrogate, time.Millisecond, true)
	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("advance fired %d times on stopped coordinator; want 0", got)
	}
}

func TestStaleAdvanceIsHarmless(t *testing.T) {
	var fired atomic.Int64
	// advance reports the transition was already applied elsewhere
	c := NewCoordinator(countingAdvance(&fired, false))
	defer c.Stop()

	c.Observe(domain.PhaseRoleAssignment, time.Millisecond, true)

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("advance fired %d times; want exactly 1 attempt", got)
	}

	// the coordinator can arm for the next phase afterwards
	c.Observe(domain.PhaseLocationReveal, time.Millisecond, true)
	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 2 {
		t.Fatalf("advance fired %d times; want 2", got)
	}
}
