package theme

import "github.com/soocke/pixel-trigger-go/domain/trigger"

// Palette for the status overlay. Kept free of Tk so presenters can use it in tests.
const (
	ColorBg        = "#0f172a"
	ColorSurface   = "#1e293b"
	ColorBorder    = "#334155"
	ColorText      = "#f1f5f9"
	ColorTextMuted = "#94a3b8"

	ColorIdle    = "#22d3ee" // cyan: watching, nothing detected
	ColorPending = "#facc15" // yellow: detected, waiting out the cooldown or the action
	ColorActive  = "#dc2626" // red: target applied / detected
	ColorOff     = "#64748b" // loop disabled
)

// IndicatorColor maps an indicator to its swatch color. A disabled loop is always
// shown as ColorOff.
func IndicatorColor(ind trigger.Indicator, enabled bool) string {
	if !enabled {
		return ColorOff
	}
	switch ind {
	case trigger.IndicatorPending:
		return ColorPending
	case trigger.IndicatorActive:
		return ColorActive
	default:
		return ColorIdle
	}
}
