// Package hud holds the meter math shared by every front end and draws
// stat bars for the window front end.
package hud

import (
	"fmt"
	"image/color"

	"chosenoffset.com/mhaclient/internal/render"
)

// Meter is a value out of a maximum, like hit points or energy.
type Meter struct {
	Value int
	Max   int
}

// Percent returns the fill in [0, 100]. A non-positive maximum gives 0 so
// inconsistent server values never overflow the bar.
func (m Meter) Percent() float64 {
	if m.Max <= 0 {
		return 0
	}
	pct := float64(m.Value) / float64(m.Max) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Label returns the "value/max" readout.
func (m Meter) Label() string {
	return fmt.Sprintf("%d/%d", m.Value, m.Max)
}

// Bar colours by fill band.
var (
	ColorHigh  = color.RGBA{50, 180, 50, 255}  // Green
	ColorMid   = color.RGBA{200, 180, 50, 255} // Yellow
	ColorLow   = color.RGBA{200, 50, 50, 255}  // Red
	ColorTrack = color.RGBA{60, 20, 20, 255}

	// Energy bars keep one colour regardless of level.
	ColorEnergy = color.RGBA{60, 140, 220, 255}
)

// HealthColor picks a bar colour from a fill percentage.
func HealthColor(percent float64) color.RGBA {
	switch {
	case percent > 60:
		return ColorHigh
	case percent > 30:
		return ColorMid
	default:
		return ColorLow
	}
}

// DrawBar draws a track, a fill proportional to percent and the label
// centred over it.
func DrawBar(r render.Renderer, dst render.Image, x, y, width, height int, percent float64, fill color.Color, label string) {
	r.FillRect(dst, float32(x), float32(y), float32(width), float32(height), ColorTrack)

	if percent > 0 {
		fillWidth := int(float64(width-2) * percent / 100)
		if fillWidth < 1 {
			fillWidth = 1
		}
		r.FillRect(dst, float32(x+1), float32(y+1), float32(fillWidth), float32(height-2), fill)
	}

	if label != "" {
		tw, th := r.MeasureText(label, 0.8)
		r.DrawText(dst, label, x+(width-tw)/2, y+(height-th)/2, color.White, 0.8)
	}
}
