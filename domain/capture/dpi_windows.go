//go:build windows

package capture

import "golang.org/x/sys/windows"

const processPerMonitorDPIAware = 2

// EnableDPIAwareness makes capture coordinates physical pixels. Per-monitor awareness
// is tried first, then the legacy system-wide call. Failures are ignored.
func EnableDPIAwareness() {
	shcore := windows.NewLazySystemDLL("shcore.dll")
	if p := shcore.NewProc("SetProcessDpiAwareness"); p.Find() == nil {
		if hr, _, _ := p.Call(processPerMonitorDPIAware); hr == 0 {
			return
		}
	}
	if p := user32.NewProc("SetProcessDPIAware"); p.Find() == nil {
		_, _, _ = p.Call()
	}
}
