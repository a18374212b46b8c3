package presenter

import (
	"time"

	"github.com/soocke/pixel-trigger-go/ui/model"
)

// EnabledSource reports whether triggering is enabled.
type EnabledSource interface{ Enabled() bool }

// SessionView displays enabled-session and total durations.
type SessionView interface {
	SetSession(session, total time.Duration)
}

// SessionPresenter advances the session model from the enabled flag and pushes the
// durations to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	src  EnabledSource
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, src EnabledSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, view: view}
}

func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	p.sess.Observe(p.src.Enabled(), now)
	p.view.SetSession(p.sess.Values())
}
