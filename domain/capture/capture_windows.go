//go:build windows

package capture

// Windows region capture using per-call GDI allocations. Each Capture creates a
// temporary top-down DIB, BitBlt's the screen into it and copies the raw BGRA bytes
// into a pooled buffer without reordering channels.

import (
	"fmt"
	"image"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soocke/pixel-trigger-go/domain/color"
)

const (
	srccopy      = 0x00CC0020
	captureblt   = 0x40000000
	dibRGBColors = 0
	biRgb        = 0
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	gdi32                  = windows.NewLazySystemDLL("gdi32.dll")
	procGetDC              = user32.NewProc("GetDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procBitBlt             = gdi32.NewProc("BitBlt")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	_      [4]byte // one RGBQUAD placeholder (unused for 32-bit)
}

// ScreenCapturer captures through GDI.
type ScreenCapturer struct{}

// NewScreenCapturer returns the platform capturer.
func NewScreenCapturer() Capturer { return ScreenCapturer{} }

// Capture implements Capturer. The frame is in OrderBGRA.
func (ScreenCapturer) Capture(r image.Rectangle) (Frame, error) {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return Frame{}, fmt.Errorf("%w: invalid rect %v", ErrCaptureFailed, r)
	}

	screenDC, _, err := procGetDC.Call(0)
	if screenDC == 0 {
		return Frame{}, fmt.Errorf("%w: GetDC: %v", ErrCaptureFailed, err)
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, err := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return Frame{}, fmt.Errorf("%w: CreateCompatibleDC: %v", ErrCaptureFailed, err)
	}
	defer procDeleteDC.Call(memDC)

	var bi bitmapInfo
	bi.Header.BiSize = uint32(unsafe.Sizeof(bi.Header))
	bi.Header.BiWidth = int32(w)
	bi.Header.BiHeight = -int32(h) // top-down
	bi.Header.BiPlanes = 1
	bi.Header.BiBitCount = 32
	bi.Header.BiCompression = biRgb
	bi.Header.BiSizeImage = uint32(w * h * color.BytesPerPixel)

	var bitsPtr unsafe.Pointer
	bmp, _, err := procCreateDIBSection.Call(memDC, uintptr(unsafe.Pointer(&bi)), dibRGBColors, uintptr(unsafe.Pointer(&bitsPtr)), 0, 0)
	if bmp == 0 || bitsPtr == nil {
		return Frame{}, fmt.Errorf("%w: CreateDIBSection: %v", ErrCaptureFailed, err)
	}
	defer procDeleteObject.Call(bmp)

	prev, _, err := procSelectObject.Call(memDC, bmp)
	if prev == 0 || prev == ^uintptr(0) {
		return Frame{}, fmt.Errorf("%w: SelectObject: %v", ErrCaptureFailed, err)
	}
	// the DIB must be deselected before DeleteObject can free it
	defer procSelectObject.Call(memDC, prev)

	ok, _, err := procBitBlt.Call(memDC, 0, 0, uintptr(w), uintptr(h), screenDC, uintptr(r.Min.X), uintptr(r.Min.Y), srccopy|captureblt)
	if ok == 0 {
		return Frame{}, fmt.Errorf("%w: BitBlt x=%d y=%d w=%d h=%d: %v", ErrCaptureFailed, r.Min.X, r.Min.Y, w, h, err)
	}

	n := w * h * color.BytesPerPixel
	pix := acquireBuffer(n)
	copy(pix, unsafe.Slice((*byte)(bitsPtr), n))
	return Frame{Pix: pix, Order: color.OrderBGRA, Width: w, Height: h, CapturedAt: time.Now()}, nil
}
