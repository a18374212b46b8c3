package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-trigger-go/ui/theme"
)

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
}

// newSessionStats grids the session and total labels at (row, col) and (row, col+1).
func newSessionStats(row, col int) *sessionStats {
	s := &sessionStats{
		sessionLbl: Label(Width(14), Anchor("w"), Background(theme.ColorBg), Foreground(theme.ColorTextMuted)),
		totalLbl:   Label(Width(14), Anchor("w"), Background(theme.ColorBg), Foreground(theme.ColorTextMuted)),
	}
	Grid(s.sessionLbl, Row(row), Column(col), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, Row(row), Column(col+1), Sticky("w"), Padx("0.2m"))
	s.set(0, 0)
	return s
}

func (s *sessionStats) set(session, total time.Duration) {
	if s == nil || s.sessionLbl == nil || s.totalLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(session)))
	s.totalLbl.Configure(Txt("Total: " + clock(total)))
}

// clock formats d as mm:ss, switching to h:mm:ss past an hour.
func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	h, m, sec := seconds/3600, (seconds/60)%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
