package view

import (
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-trigger-go/ui/theme"
)

// Overlay is the small always-on-top status window. All methods must be called on
// the Tk thread.
type Overlay struct {
	indicator *LabelWidget
	status    *LabelWidget
	session   *sessionStats
	afterID   string
}

// NewOverlay builds the overlay in the root window. onToggle and onExit back the two
// buttons; onExit also handles the window close button.
func NewOverlay(title string, onToggle, onExit func()) *Overlay {
	o := &Overlay{}
	App.WmTitle(title)
	App.Configure(Background(theme.ColorBg))
	WmGeometry(App, "+10+10")
	WmAttributes(App, "-topmost", 1)
	WmProtocol(App, "WM_DELETE_WINDOW", onExit)

	o.indicator = Label(Txt(" "), Width(2), Background(theme.ColorIdle), Borderwidth(1), Relief("ridge"))
	Grid(o.indicator, Row(0), Column(0), Sticky("nsew"), Padx("0.4m"), Pady("0.3m"))
	o.status = Label(Txt("Enable: -"), Anchor("w"), Background(theme.ColorBg), Foreground(theme.ColorText))
	Grid(o.status, Row(0), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	o.session = newSessionStats(1, 1)

	buttons := Frame(Background(theme.ColorBg))
	Grid(buttons, Row(2), Column(0), Columnspan(3), Sticky("we"), Pady("0.3m"))
	Grid(Button(Txt("Toggle"), Command(onToggle)), In(buttons), Row(0), Column(0), Sticky("we"), Padx("0.2m"))
	Grid(Button(Txt("Exit"), Command(onExit)), In(buttons), Row(0), Column(1), Sticky("we"), Padx("0.2m"))
	return o
}

// SetStatus replaces the status text.
func (o *Overlay) SetStatus(text string) {
	if o == nil || o.status == nil {
		return
	}
	o.status.Configure(Txt(text))
}

// SetIndicator recolors the swatch.
func (o *Overlay) SetIndicator(color string) {
	if o == nil || o.indicator == nil {
		return
	}
	o.indicator.Configure(Background(color))
}

// SetSession shows the enabled durations.
func (o *Overlay) SetSession(session, total time.Duration) { o.session.set(session, total) }

// Every runs fn on the Tk thread after d; fn typically reschedules itself.
func (o *Overlay) Every(d time.Duration, fn func()) {
	o.afterID = TclAfter(d, fn)
}

// Run enters the Tk main loop until the window is destroyed.
func (o *Overlay) Run() { App.Wait() }

// Close cancels the pending update and destroys the window.
func (o *Overlay) Close() {
	if o.afterID != "" {
		TclAfterCancel(o.afterID)
		o.afterID = ""
	}
	Destroy(App)
}
