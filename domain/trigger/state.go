package trigger

import (
	"sync"
	"time"
)

// State is the single shared RunState. The sampling loop and the hotkey listener both
// hold a pointer to it; every logical update happens under one mutex and no blocking
// work is done while it is held.
type State struct {
	mu sync.Mutex

	runID  string
	policy PolicyKind

	enabled       bool
	detected      bool
	currentValue  int
	hasValue      bool
	lastTrigger   time.Time
	triggerCount  uint64
	testCount     uint64
	leftTestCount uint64
	indicator     Indicator

	ticks           uint64
	captureFailures uint64
	actionFailures  uint64
}

// NewState returns the startup RunState: enabled, idle, and for the level policy the
// default value assumed applied.
func NewState(p Policy, runID string) *State {
	s := &State{runID: runID, policy: p.Kind, enabled: true, indicator: IndicatorIdle}
	if p.Kind == PolicyLevel {
		s.currentValue = p.DefaultValue
		s.hasValue = true
	}
	return s
}

// Toggle flips enabled and returns the new value.
func (s *State) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = !s.enabled
	return s.enabled
}

// SetEnabled stores enabled.
func (s *State) SetEnabled(b bool) {
	s.mu.Lock()
	s.enabled = b
	s.mu.Unlock()
}

// Enabled reports whether sampling is active.
func (s *State) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Snapshot returns a consistent copy.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		RunID:           s.runID,
		Policy:          s.policy,
		Enabled:         s.enabled,
		Detected:        s.detected,
		CurrentValue:    s.currentValue,
		HasValue:        s.hasValue,
		LastTrigger:     s.lastTrigger,
		TriggerCount:    s.triggerCount,
		TestCount:       s.testCount,
		LeftTestCount:   s.leftTestCount,
		Indicator:       s.indicator,
		Ticks:           s.ticks,
		CaptureFailures: s.captureFailures,
		ActionFailures:  s.actionFailures,
	}
}

func (s *State) countTest(left bool) {
	s.mu.Lock()
	if left {
		s.leftTestCount++
	} else {
		s.testCount++
	}
	s.mu.Unlock()
}

// beginTick reads enabled for this tick and counts the tick.
func (s *State) beginTick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	return s.enabled
}

func (s *State) recordCaptureFailure() {
	s.mu.Lock()
	s.captureFailures++
	s.mu.Unlock()
}
