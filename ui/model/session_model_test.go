package model

import (
	"testing"
	"time"

	"github.com/soocke/pixel-trigger-go/domain/trigger"
)

func TestSessionModel_EnabledStretches(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	m.Observe(true, base)
	m.Observe(true, base.Add(5*time.Second))
	session, total := m.Values()
	if session != 5*time.Second || total != 5*time.Second {
		t.Fatalf("running: session=%v total=%v", session, total)
	}

	m.Observe(false, base.Add(6*time.Second))
	session, total = m.Values()
	if session != 6*time.Second || total != 6*time.Second {
		t.Fatalf("after disable: session=%v total=%v", session, total)
	}

	// disabled time is not counted
	m.Observe(false, base.Add(20*time.Second))
	if s2, t2 := m.Values(); s2 != session || t2 != total {
		t.Fatalf("idle changed durations: session=%v total=%v", s2, t2)
	}

	m.Observe(true, base.Add(30*time.Second))
	m.Observe(true, base.Add(33*time.Second))
	session, total = m.Values()
	if session != 3*time.Second || total != 9*time.Second {
		t.Fatalf("second stretch: session=%v total=%v", session, total)
	}
	if m.Toggles() != 3 {
		t.Fatalf("expected 3 transitions, got %d", m.Toggles())
	}
}

func TestSessionModel_NilSafe(t *testing.T) {
	var m *SessionModel
	m.Observe(true, time.Now())
	if s, tot := m.Values(); s != 0 || tot != 0 {
		t.Fatal("nil model must report zero")
	}
}

func TestStatusModel_LatestWins(t *testing.T) {
	m := NewStatusModel()
	if _, ok := m.Latest(); ok {
		t.Fatal("empty model reported a snapshot")
	}
	m.Publish(trigger.Snapshot{Enabled: true, TriggerCount: 1})
	m.Publish(trigger.Snapshot{Enabled: false, TriggerCount: 2})
	s, ok := m.Latest()
	if !ok || s.TriggerCount != 2 || m.Enabled() {
		t.Fatalf("unexpected latest %+v", s)
	}
}
