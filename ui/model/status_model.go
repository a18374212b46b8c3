package model

import (
	"sync/atomic"

	"github.com/soocke/pixel-trigger-go/domain/trigger"
)

// StatusModel holds the most recent snapshot published by the sampling loop.
// Publish is called from the loop goroutine and Latest from the UI thread, so the
// snapshot is swapped atomically. The zero value is usable and reports nothing yet.
type StatusModel struct {
	latest atomic.Pointer[trigger.Snapshot]
}

// NewStatusModel returns an empty model.
func NewStatusModel() *StatusModel { return &StatusModel{} }

// Publish stores s. It never blocks.
func (m *StatusModel) Publish(s trigger.Snapshot) {
	if m == nil {
		return
	}
	m.latest.Store(&s)
}

// Latest returns the last published snapshot.
func (m *StatusModel) Latest() (trigger.Snapshot, bool) {
	if m == nil {
		return trigger.Snapshot{}, false
	}
	p := m.latest.Load()
	if p == nil {
		return trigger.Snapshot{}, false
	}
	return *p, true
}

// Enabled reports whether the last snapshot was enabled.
func (m *StatusModel) Enabled() bool {
	s, ok := m.Latest()
	return ok && s.Enabled
}
