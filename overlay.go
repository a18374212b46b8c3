package main

import (
	"context"
	"time"

	"github.com/soocke/pixel-trigger-go/app"
	"github.com/soocke/pixel-trigger-go/ui/presenter"
	"github.com/soocke/pixel-trigger-go/ui/view"
)

const overlayTick = 100 * time.Millisecond

// overlayForeground runs the Tk status overlay on the main goroutine. Closing the
// window ends the run; ending the run closes the window.
func overlayForeground(c *app.Container) app.Foreground {
	return func(ctx context.Context, stop context.CancelFunc) {
		var ov *view.Overlay
		closed := false
		closeOverlay := func() {
			if !closed {
				closed = true
				ov.Close()
			}
		}
		control := presenter.NewControlPresenter(c.Engine, func() { stop(); closeOverlay() }, c.Logger)
		ov = view.NewOverlay("Pixel Trigger", control.Toggle, control.Exit)

		var loop *presenter.Loop
		loop = presenter.NewLoop(
			presenter.NewStatusPresenter(c.Status, ov),
			presenter.NewSessionPresenter(c.Session, c.Status, ov),
			func() {
				if ctx.Err() != nil {
					closeOverlay()
					return
				}
				ov.Every(overlayTick, loop.Tick)
			},
		)
		ov.Every(overlayTick, loop.Tick)
		ov.Run()
		stop()
	}
}
