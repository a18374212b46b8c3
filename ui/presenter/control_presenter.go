package presenter

import "log/slog"

// Toggler flips the enabled flag and returns the new value.
type Toggler interface{ Toggle() bool }

// ControlPresenter handles the overlay's buttons. The toggle goes through the same
// shared state as the hotkey, so the next snapshot reflects it on the next UI tick.
type ControlPresenter struct {
	target Toggler
	exit   func()
	logger *slog.Logger
}

func NewControlPresenter(target Toggler, exit func(), logger *slog.Logger) *ControlPresenter {
	return &ControlPresenter{target: target, exit: exit, logger: logger}
}

// Toggle flips enabled.
func (c *ControlPresenter) Toggle() {
	if c == nil || c.target == nil {
		return
	}
	enabled := c.target.Toggle()
	if c.logger != nil {
		c.logger.Debug("toggle from overlay", "enabled", enabled)
	}
}

// Exit requests shutdown.
func (c *ControlPresenter) Exit() {
	if c == nil || c.exit == nil {
		return
	}
	c.exit()
}
