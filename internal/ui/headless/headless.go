// Package headless provides an in-memory ui.Surface that records every
// call. It backs the client's tests and scripted runs without a display.
package headless

import (
	"sync"

	"chosenoffset.com/mhaclient/internal/ui"
)

// LineHeight is the height of one log line in surface units.
const LineHeight = 20

// Surface records the state a real front end would display.
type Surface struct {
	mu sync.Mutex

	text    map[ui.Element]string
	fill    map[ui.Element]float64
	visible map[ui.Element]bool
	image   string
	images  []string

	log           []ui.Line
	visibleHeight int
	offset        int

	resumeEnabled bool
	resumeLabel   string
	notices       []string
	busy          bool
	busyChanges   int
	focus         int
	inputCleared  int
}

// New returns a surface whose log viewport is visibleLines tall.
func New(visibleLines int) *Surface {
	return &Surface{
		text:          map[ui.Element]string{},
		fill:          map[ui.Element]float64{},
		visible:       map[ui.Element]bool{ui.StartOverlay: true},
		visibleHeight: visibleLines * LineHeight,
	}
}

func (s *Surface) SetText(el ui.Element, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text[el] = text
}

func (s *Surface) SetFill(el ui.Element, percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fill[el] = percent
}

func (s *Surface) SetVisible(el ui.Element, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[el] = visible
}

func (s *Surface) SetImage(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = path
	s.images = append(s.images, path)
}

func (s *Surface) ClearLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
}

func (s *Surface) AppendLog(line ui.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, line)
}

func (s *Surface) LogMetrics() ui.LogMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metricsLocked()
}

func (s *Surface) metricsLocked() ui.LogMetrics {
	return ui.LogMetrics{
		Content: len(s.log) * LineHeight,
		Visible: s.visibleHeight,
		Offset:  s.offset,
	}
}

func (s *Surface) clampLocked() {
	if limit := s.metricsLocked().MaxOffset(); s.offset > limit {
		s.offset = limit
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

func (s *Surface) ScrollLog(to ui.Scroll) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch to {
	case ui.ScrollTop:
		s.offset = 0
	case ui.ScrollBottom:
		s.offset = s.metricsLocked().MaxOffset()
	}
}

// ScrollTo moves the viewport as a user dragging the log would.
func (s *Surface) ScrollTo(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = offset
	s.clampLocked()
}

func (s *Surface) FocusInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus++
}

func (s *Surface) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputCleared++
}

func (s *Surface) SetResume(enabled bool, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeEnabled = enabled
	s.resumeLabel = label
}

func (s *Surface) Notify(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
}

func (s *Surface) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy != busy {
		s.busyChanges++
	}
	s.busy = busy
}

// Text returns the current text of el.
func (s *Surface) Text(el ui.Element) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text[el]
}

// Fill returns the current fill of el.
func (s *Surface) Fill(el ui.Element) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fill[el]
}

// Visible reports whether el is shown. Elements never touched are hidden,
// except the start overlay which starts visible.
func (s *Surface) Visible(el ui.Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[el]
}

// Image returns the path last passed to SetImage.
func (s *Surface) Image() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// ImageCalls returns how many times SetImage was called.
func (s *Surface) ImageCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Log returns a copy of the log lines.
func (s *Surface) Log() []ui.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ui.Line, len(s.log))
	copy(out, s.log)
	return out
}

// LogText returns the plain text of every log line.
func (s *Surface) LogText() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.log))
	for i, l := range s.log {
		out[i] = l.Text()
	}
	return out
}

// Offset returns the log scroll offset, clamped to the current content the
// way a layout pass would.
func (s *Surface) Offset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clampLocked()
	return s.offset
}

// Resume returns the resume affordance state.
func (s *Surface) Resume() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeEnabled, s.resumeLabel
}

// Notices returns every notice shown so far.
func (s *Surface) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

// Busy reports the current busy flag and how many times it changed.
func (s *Surface) Busy() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy, s.busyChanges
}

// Focused returns how many times the input was focused.
func (s *Surface) Focused() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// InputCleared returns how many times the input was cleared.
func (s *Surface) InputCleared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputCleared
}
