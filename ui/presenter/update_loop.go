package presenter

import "time"

// Loop drives the presenters from the UI thread and reschedules itself through the
// Schedule callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Status   *StatusPresenter
	Session  *SessionPresenter
	Schedule func()
	now      func() time.Time
}

func NewLoop(status *StatusPresenter, sess *SessionPresenter, schedule func()) *Loop {
	return &Loop{Status: status, Session: sess, Schedule: schedule, now: time.Now}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.now != nil {
		now = l.now()
	}
	if l.Status != nil {
		l.Status.Tick()
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
