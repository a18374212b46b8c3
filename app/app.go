package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// Foreground runs on the calling goroutine for the lifetime of the app, typically a UI
// main loop. It must return once ctx is done and may call stop to end the run.
type Foreground func(ctx context.Context, stop context.CancelFunc)

// Run starts the hotkey listener and the sampling loop, then blocks in fg (or until
// ctx is done when fg is nil). A listener registration failure aborts the run before
// any sampling happens.
func Run(ctx context.Context, c *Container, fg Foreground) error {
	if err := c.Listener.Start(); err != nil {
		return err
	}
	defer c.Listener.Stop()

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	if c.Config.Debug {
		c.Stats.Start(ctx)
	}

	loopErr := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if c.Logger != nil {
					c.Logger.Error("sampling loop panic", "error", r, "stack", string(debug.Stack()))
				}
				loopErr <- fmt.Errorf("sampling loop panic: %v", r)
				stop()
			}
		}()
		loopErr <- c.Engine.Run(ctx)
	}()

	if fg != nil {
		fg(ctx, stop)
	} else {
		<-ctx.Done()
	}
	stop()

	err := <-loopErr
	if c.Logger != nil {
		s := c.State.Snapshot()
		c.Logger.Info("stopped",
			"ticks", s.Ticks,
			"triggers", s.TriggerCount,
			"tests", s.TestCount,
			"left_tests", s.LeftTestCount,
			"capture_failures", s.CaptureFailures,
			"action_failures", s.ActionFailures,
		)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
