package color

import (
	"errors"
	"fmt"
	"math"
)

// ChannelOrder describes the byte layout of one 4-byte pixel in a capture buffer.
type ChannelOrder int

const (
	// OrderBGRA is the native GDI/DIB layout: blue, green, red, alpha.
	OrderBGRA ChannelOrder = iota
	// OrderRGBA is the image.RGBA layout.
	OrderRGBA
)

func (o ChannelOrder) String() string {
	switch o {
	case OrderBGRA:
		return "bgra"
	case OrderRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// BytesPerPixel is the stride of every supported capture format.
const BytesPerPixel = 4

// RGB is an 8-bit color sample.
type RGB struct {
	R, G, B uint8
}

// Model is the target color window in HSV space. Hue bounds are degrees in [0,360),
// saturation and value are normalized to [0,1]. All bounds are inclusive.
type Model struct {
	HueMin float64
	HueMax float64
	SatMin float64
	ValMin float64
}

// ErrInvalidModel is wrapped by Model.Validate failures.
var ErrInvalidModel = errors.New("invalid color model")

// Validate reports every bound that is out of range.
func (m Model) Validate() error {
	var errs []error
	if m.HueMin < 0 || m.HueMax > 360 || m.HueMin > m.HueMax {
		errs = append(errs, fmt.Errorf("%w: hue range [%g,%g] must satisfy 0 <= min <= max <= 360", ErrInvalidModel, m.HueMin, m.HueMax))
	}
	if m.SatMin < 0 || m.SatMin > 1 {
		errs = append(errs, fmt.Errorf("%w: sat_min %g outside [0,1]", ErrInvalidModel, m.SatMin))
	}
	if m.ValMin < 0 || m.ValMin > 1 {
		errs = append(errs, fmt.Errorf("%w: val_min %g outside [0,1]", ErrInvalidModel, m.ValMin))
	}
	return errors.Join(errs...)
}

// ToHSV converts an 8-bit RGB triple to hue in degrees [0,360) and saturation/value in [0,1].
// Achromatic input (r == g == b) has hue 0 and saturation 0.
func ToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255
	maxc := math.Max(rf, math.Max(gf, bf))
	minc := math.Min(rf, math.Min(gf, bf))
	v = maxc
	if maxc == minc {
		return 0, 0, v
	}
	delta := maxc - minc
	s = delta / maxc
	rc := (maxc - rf) / delta
	gc := (maxc - gf) / delta
	bc := (maxc - bf) / delta
	switch {
	case rf == maxc:
		h = bc - gc
	case gf == maxc:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h /= 6
	h -= math.Floor(h)
	return h * 360, s, v
}

// Classify reports whether px falls inside the model's HSV window.
func Classify(px RGB, m Model) bool {
	h, s, v := ToHSV(px.R, px.G, px.B)
	return m.HueMin <= h && h <= m.HueMax && s >= m.SatMin && v >= m.ValMin
}

// RegionMatches reports whether any pixel in pix matches m. The buffer is walked in
// 4-byte strides using order to locate the color channels; a trailing partial pixel is
// ignored. It returns on the first match.
func RegionMatches(pix []byte, order ChannelOrder, m Model) bool {
	ri, gi, bi := 2, 1, 0
	if order == OrderRGBA {
		ri, gi, bi = 0, 1, 2
	}
	for i := 0; i+BytesPerPixel <= len(pix); i += BytesPerPixel {
		if Classify(RGB{R: pix[i+ri], G: pix[i+gi], B: pix[i+bi]}, m) {
			return true
		}
	}
	return false
}
