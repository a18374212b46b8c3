package presenter

import (
	"github.com/soocke/pixel-trigger-go/domain/trigger"
	"github.com/soocke/pixel-trigger-go/ui/theme"
)

// StatusSource provides the latest published snapshot.
type StatusSource interface {
	Latest() (trigger.Snapshot, bool)
}

// StatusView shows the status text and indicator swatch.
type StatusView interface {
	SetStatus(text string)
	SetIndicator(color string)
}

// StatusPresenter projects snapshots onto the view, touching widgets only when the
// rendered text or color actually changes.
type StatusPresenter struct {
	src       StatusSource
	view      StatusView
	lastText  string
	lastColor string
}

func NewStatusPresenter(src StatusSource, view StatusView) *StatusPresenter {
	return &StatusPresenter{src: src, view: view}
}

// Tick pulls the latest snapshot and updates the view.
func (p *StatusPresenter) Tick() {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	s, ok := p.src.Latest()
	if !ok {
		return
	}
	if text := s.StatusText(); text != p.lastText {
		p.lastText = text
		p.view.SetStatus(text)
	}
	if c := theme.IndicatorColor(s.Indicator, s.Enabled); c != p.lastColor {
		p.lastColor = c
		p.view.SetIndicator(c)
	}
}
