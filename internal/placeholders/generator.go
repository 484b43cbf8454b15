// Package placeholders draws fallback art in code for when neither the
// requested image nor the server's placeholder image can be loaded.
package placeholders

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
)

// Default portrait size, matching the server's placeholder.png.
const (
	PortraitWidth  = 640
	PortraitHeight = 360
)

// ColorPalette defines the fallback art colours.
var ColorPalette = struct {
	Background color.RGBA
	Frame      color.RGBA
	Stripe     color.RGBA
	Hero       color.RGBA
	Villain    color.RGBA
}{
	Background: color.RGBA{20, 20, 30, 255},  // Same as the panel background
	Frame:      color.RGBA{60, 60, 80, 255},  // Panel border
	Stripe:     color.RGBA{34, 34, 50, 255},  // Diagonal texture
	Hero:       color.RGBA{76, 175, 80, 255}, // U.A. green
	Villain:    color.RGBA{180, 40, 60, 255}, // League red
}

// Solid creates a w×h image filled with col.
func Solid(w, h int, col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// Bordered creates a w×h image with a border of the given width.
func Bordered(w, h int, fillColor, borderColor color.RGBA, borderWidth int) *image.RGBA {
	img := Solid(w, h, fillColor)
	for i := 0; i < borderWidth; i++ {
		for x := 0; x < w; x++ {
			img.Set(x, i, borderColor)
			img.Set(x, h-1-i, borderColor)
		}
		for y := 0; y < h; y++ {
			img.Set(i, y, borderColor)
			img.Set(w-1-i, y, borderColor)
		}
	}
	return img
}

// Portrait draws the generic fallback picture: a framed dark panel with a
// diagonal stripe texture and a centred emblem in accent.
func Portrait(w, h int, accent color.RGBA) *image.RGBA {
	if w <= 0 || h <= 0 {
		w, h = PortraitWidth, PortraitHeight
	}
	img := Bordered(w, h, ColorPalette.Background, ColorPalette.Frame, 3)

	// Diagonal stripes every 24px inside the frame.
	for y := 3; y < h-3; y++ {
		for x := 3; x < w-3; x++ {
			if (x+y)%24 < 2 {
				img.Set(x, y, ColorPalette.Stripe)
			}
		}
	}

	// Emblem: a ring with a darker core.
	cx, cy := w/2, h/2
	radius := h / 6
	if radius < 4 {
		radius = 4
	}
	inner := Darken(accent, 0.5)
	for y := cy - radius - 1; y <= cy+radius+1; y++ {
		for x := cx - radius - 1; x <= cx+radius+1; x++ {
			dx, dy := x-cx, y-cy
			distSq := dx*dx + dy*dy
			switch {
			case distSq <= (radius-3)*(radius-3):
				img.Set(x, y, inner)
			case distSq <= radius*radius:
				img.Set(x, y, accent)
			case distSq <= (radius+1)*(radius+1):
				img.Set(x, y, Lighten(accent, 0.4))
			}
		}
	}
	return img
}

// Black is the "no image" frame used for dramatic scenes.
func Black(w, h int) *image.RGBA {
	return Solid(w, h, color.RGBA{0, 0, 0, 255})
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of a color
func Lighten(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*factor),
		G: uint8(float64(c.G) + (255-float64(c.G))*factor),
		B: uint8(float64(c.B) + (255-float64(c.B))*factor),
		A: c.A,
	}
}
