//go:build !windows

package capture

import (
	"fmt"
	"image"
	"time"

	"github.com/vova616/screenshot"

	"github.com/soocke/pixel-trigger-go/domain/color"
)

// ScreenCapturer captures through the screenshot library, which yields image.RGBA.
type ScreenCapturer struct{}

// NewScreenCapturer returns the platform capturer.
func NewScreenCapturer() Capturer { return ScreenCapturer{} }

// Capture implements Capturer. The frame is in OrderRGBA.
func (ScreenCapturer) Capture(r image.Rectangle) (Frame, error) {
	if r.Empty() {
		return Frame{}, fmt.Errorf("%w: invalid rect %v", ErrCaptureFailed, r)
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if img == nil {
		return Frame{}, fmt.Errorf("%w: empty image", ErrCaptureFailed)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowBytes := w * color.BytesPerPixel
	pix := acquireBuffer(rowBytes * h)
	for y := 0; y < h; y++ {
		copy(pix[y*rowBytes:(y+1)*rowBytes], img.Pix[y*img.Stride:y*img.Stride+rowBytes])
	}
	return Frame{Pix: pix, Order: color.OrderRGBA, Width: w, Height: h, CapturedAt: time.Now()}, nil
}
