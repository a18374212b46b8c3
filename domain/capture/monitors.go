package capture

import (
	"image"

	"github.com/kbinani/screenshot"
)

// DisplayMonitors enumerates active displays.
type DisplayMonitors struct{}

// Monitors implements MonitorSource. Entry 0 is the union of all displays and entry
// i+1 is display i.
func (DisplayMonitors) Monitors() ([]image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, ErrNoMonitor
	}
	out := make([]image.Rectangle, 0, n+1)
	var all image.Rectangle
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		out = append(out, b)
		all = all.Union(b)
	}
	return append([]image.Rectangle{all}, out...), nil
}
