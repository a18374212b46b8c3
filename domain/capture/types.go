package capture

import (
	"errors"
	"image"
	"time"

	"github.com/soocke/pixel-trigger-go/domain/color"
)

// ErrCaptureFailed wraps every per-tick capture failure.
var ErrCaptureFailed = errors.New("capture failed")

// Frame is one captured region: tightly packed 4-byte pixels in Order.
type Frame struct {
	Pix        []byte
	Order      color.ChannelOrder
	Width      int
	Height     int
	CapturedAt time.Time
	Sequence   uint64
}

// Empty reports whether the frame carries no pixels.
func (f Frame) Empty() bool { return len(f.Pix) == 0 }

// Capturer grabs a screen rectangle synchronously.
type Capturer interface {
	Capture(r image.Rectangle) (Frame, error)
}

// MonitorSource enumerates monitor geometry in virtual-desktop coordinates.
type MonitorSource interface {
	Monitors() ([]image.Rectangle, error)
}
