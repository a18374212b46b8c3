package model

import (
	"time"
)

// SessionModel measures how long triggering has been enabled: the current enabled
// stretch and the total over the run. It is only touched from the UI thread.
// The zero value is ready to use.
type SessionModel struct {
	enabled      bool
	enabledSince time.Time
	current      time.Duration
	completed    time.Duration
	toggles      int
}

// NewSessionModel returns a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// Observe folds the enabled flag seen at now into the durations.
func (m *SessionModel) Observe(enabled bool, now time.Time) {
	if m == nil {
		return
	}
	switch {
	case enabled && !m.enabled:
		m.enabled = true
		m.enabledSince = now
		m.current = 0
		m.toggles++
	case enabled:
		m.current = now.Sub(m.enabledSince)
	case m.enabled:
		m.current = now.Sub(m.enabledSince)
		m.completed += m.current
		m.enabled = false
		m.toggles++
	}
}

// Values returns the current (or last) enabled stretch and the total enabled time,
// including the running stretch.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	total = m.completed
	if m.enabled {
		total += m.current
	}
	return m.current, total
}

// Toggles counts observed enabled/disabled transitions.
func (m *SessionModel) Toggles() int {
	if m == nil {
		return 0
	}
	return m.toggles
}
