// Package ui defines the rendering surface the client draws into. A surface
// is a retained set of named elements plus a scrolling message log; the
// front ends (window, terminal, headless) decide how to present it.
package ui

import "chosenoffset.com/mhaclient/internal/colorize"

// Element names one addressable piece of the screen.
type Element string

const (
	StartOverlay Element = "startOverlay"

	ImageOverlay Element = "imageOverlay"
	ZoneInfo     Element = "zoneInfo"
	EnemyInfo    Element = "enemyInfo"

	StatsBar       Element = "statsBar"
	CharName       Element = "charName"
	CharHPFill     Element = "charHpFill"
	CharHPText     Element = "charHpText"
	CharEnergyFill Element = "charEnergyFill"
	CharEnergyText Element = "charEnergyText"
	InventoryCount Element = "inventoryCount"

	EnemyName   Element = "enemyNameCombat"
	EnemyLevel  Element = "enemyLevelCombat"
	EnemyHPFill Element = "enemyHpFillCombat"
	EnemyHPText Element = "enemyHpTextCombat"

	ProgressText Element = "progressText"
	StudentsText Element = "studentsText"
	InputPrompt  Element = "inputPrompt"
)

// Line is one log paragraph: colorized spans plus the message type, which
// front ends use for styling ("normal", "warning", ...).
type Line struct {
	Spans []colorize.Span
	Type  string
}

// Text returns the line without styling.
func (l Line) Text() string {
	return colorize.Plain(l.Spans)
}

// LogMetrics describes the log viewport in surface units (pixels for the
// window, rows for text surfaces).
type LogMetrics struct {
	Content int // total height of all lines
	Visible int // height of the viewport
	Offset  int // distance scrolled from the top
}

// Fits reports whether all content is visible without scrolling.
func (m LogMetrics) Fits() bool {
	return m.Content <= m.Visible
}

// NearBottom reports whether the viewport ends within threshold of the
// bottom of the content.
func (m LogMetrics) NearBottom(threshold int) bool {
	return m.Offset+m.Visible >= m.Content-threshold
}

// MaxOffset is the largest valid scroll offset.
func (m LogMetrics) MaxOffset() int {
	if m.Content <= m.Visible {
		return 0
	}
	return m.Content - m.Visible
}

// Scroll is a log scroll target.
type Scroll int

const (
	ScrollTop Scroll = iota
	ScrollBottom
)

// Surface is what the client renders into. Implementations must be safe
// for concurrent use; the client may call from a network goroutine while a
// front end reads the state for drawing.
type Surface interface {
	// SetText replaces the text content of an element.
	SetText(el Element, text string)
	// SetFill sets a meter's fill in percent, already clamped to [0, 100].
	SetFill(el Element, percent float64)
	SetVisible(el Element, visible bool)
	// SetImage shows the picture at path in the image area. An empty path
	// shows a black frame.
	SetImage(path string)

	ClearLog()
	AppendLog(line Line)
	LogMetrics() LogMetrics
	ScrollLog(to Scroll)

	FocusInput()
	ClearInput()

	// SetResume enables or disables the resume affordance and sets its label.
	SetResume(enabled bool, label string)
	// Notify shows a blocking, one-off notice to the user.
	Notify(msg string)
	// SetBusy brackets network calls so controls can be disabled.
	SetBusy(busy bool)
}
