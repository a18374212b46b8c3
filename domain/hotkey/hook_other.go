//go:build !windows

package hotkey

import (
	"fmt"
	"runtime"

	"github.com/soocke/pixel-trigger-go/domain/action"
)

// HookSource is the global keyboard hook. Only Windows provides one.
type HookSource struct{}

// NewHookSource returns the platform keyboard hook.
func NewHookSource() *HookSource { return &HookSource{} }

func (*HookSource) Start(chan<- Event) error {
	return fmt.Errorf("global keyboard hook on %s: %w", runtime.GOOS, action.ErrUnsupported)
}

func (*HookSource) Stop() {}
