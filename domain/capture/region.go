package capture

import (
	"errors"
	"fmt"
	"image"
)

// CenterRegion returns the square of side size centered on monitor. The origin is
// clamped to the monitor's origin and the square to the monitor bounds; the result
// is at least 1x1 for any non-empty monitor.
func CenterRegion(monitor image.Rectangle, size int) image.Rectangle {
	if size < 1 {
		size = 1
	}
	half := size / 2
	x0 := monitor.Min.X + max(monitor.Dx()/2-half, 0)
	y0 := monitor.Min.Y + max(monitor.Dy()/2-half, 0)
	r := image.Rect(x0, y0, x0+size, y0+size).Intersect(monitor)
	if r.Empty() {
		return image.Rect(monitor.Min.X, monitor.Min.Y, monitor.Min.X+1, monitor.Min.Y+1)
	}
	return r
}

// ErrNoMonitor is returned when monitor enumeration yields nothing usable.
var ErrNoMonitor = errors.New("no monitor available")

// SelectMonitor picks a monitor by index. A negative index selects automatically:
// the second entry when more than one exists, otherwise the first.
func SelectMonitor(monitors []image.Rectangle, index int) (image.Rectangle, error) {
	if len(monitors) == 0 {
		return image.Rectangle{}, ErrNoMonitor
	}
	if index < 0 {
		index = 0
		if len(monitors) > 1 {
			index = 1
		}
	}
	if index >= len(monitors) {
		return image.Rectangle{}, fmt.Errorf("%w: index %d of %d", ErrNoMonitor, index, len(monitors))
	}
	m := monitors[index]
	if m.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: monitor %d has empty bounds", ErrNoMonitor, index)
	}
	return m, nil
}
