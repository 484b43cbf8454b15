package render

import (
	"image"
	"image/color"
)

// Renderer is the main rendering interface that abstracts the underlying
// graphics engine. This allows swapping rendering backends without changing
// the client's view code.
type Renderer interface {
	// Image operations
	NewImage(width, height int) Image
	NewImageFromImage(src image.Image) Image

	// Vector operations (for drawing panels and meters)
	FillRect(dst Image, x, y, width, height float32, clr color.Color)
	StrokeRect(dst Image, x, y, width, height, strokeWidth float32, clr color.Color)

	// Text operations. (x, y) is the top-left corner of the line box.
	DrawText(dst Image, text string, x, y int, clr color.Color, scale float64)
	MeasureText(text string, scale float64) (width, height int)
}

// TextMeasurer measures a line of text. It is the subset of Renderer that
// layout code needs, so layout can be tested without a graphics device.
type TextMeasurer interface {
	MeasureText(text string, scale float64) (width, height int)
}

// Image represents a renderable image surface that can be drawn to or drawn from.
// It abstracts the underlying image implementation.
type Image interface {
	Bounds() image.Rectangle

	// Sub-image extraction
	SubImage(r image.Rectangle) Image

	// Fill operations
	Fill(clr color.Color)

	// Drawing operations
	DrawImage(src Image, opts *DrawImageOptions)

	// Resource management
	Dispose()
}

// DrawImageOptions contains options for drawing an image.
type DrawImageOptions struct {
	GeoM GeoM
}

// GeoM represents a geometric transformation matrix.
type GeoM interface {
	// Translate shifts the image by (tx, ty).
	Translate(tx, ty float64)
}

// NewGeoM creates a new geometric transformation matrix.
// This is implemented by the specific renderer backend.
var NewGeoM func() GeoM

// InputManager handles input from the user (keyboard, mouse, text).
type InputManager interface {
	IsKeyJustPressed(key Key) bool
	// IsKeyRepeated reports a just-pressed key or an auto-repeat tick of a
	// held key, for editing keys like backspace.
	IsKeyRepeated(key Key) bool
	GetCursorPosition() (x, y int)
	IsMouseButtonJustPressed(button MouseButton) bool
	// Wheel returns the vertical wheel movement since the last tick.
	Wheel() float64
	// AppendInputChars appends the characters typed since the last tick.
	AppendInputChars(runes []rune) []rune
}

// Key represents a keyboard key.
type Key int

// Key constants for the keys the client reacts to
const (
	KeyEnter Key = iota
	KeyBackspace
	KeyEscape
	KeyF5
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
)

// MouseButton represents a mouse button.
type MouseButton int

// Mouse button constants
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Game represents the interface that the engine will call.
// This is implemented by the client's window view.
type Game interface {
	// Update updates the view state. It is called every tick (typically 60 times per second).
	Update() error

	// Draw draws the screen. It is called every frame.
	Draw(screen Image)

	// Layout accepts the outside size (e.g., window size) and returns the logical screen size.
	// The logical screen size is used for rendering and input coordinates.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine represents the engine that manages the main loop and window.
type Engine interface {
	// SetWindowSize sets the window size in pixels.
	SetWindowSize(width, height int)

	// SetWindowTitle sets the window title.
	SetWindowTitle(title string)

	// SetWindowResizable enables or disables window resizing.
	SetWindowResizable(resizable bool)

	// RunGame runs the main loop with the provided game.
	// This is a blocking call that runs until the window closes or Update
	// returns an error.
	RunGame(game Game) error
}

// ErrQuit is returned from Game.Update to end the loop cleanly.
var ErrQuit = quitError{}

type quitError struct{}

func (quitError) Error() string { return "quit" }
