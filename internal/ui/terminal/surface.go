// Package terminal is a line-based front end: an ANSI ui.Surface that
// prints frames to a writer and a loop that reads commands from a reader.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"chosenoffset.com/mhaclient/internal/colorize"
	"chosenoffset.com/mhaclient/internal/locale"
	"chosenoffset.com/mhaclient/internal/ui"
	"chosenoffset.com/mhaclient/internal/ui/hud"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiRed   = "\x1b[31m"
	ansiCyan  = "\x1b[36m"
	ansiClear = "\x1b[2J\x1b[H"

	barCells = 10
)

// Options configures a terminal surface.
type Options struct {
	Out     io.Writer
	Width   int  // columns
	Height  int  // log rows that fit on screen
	Color   bool // emit ANSI escapes
	Printer *locale.Printer
}

// Surface keeps the screen state and prints it on Flush.
type Surface struct {
	mu      sync.Mutex
	out     io.Writer
	width   int
	height  int
	color   bool
	printer *locale.Printer

	text    map[ui.Element]string
	fill    map[ui.Element]float64
	visible map[ui.Element]bool
	image   string

	log     []ui.Line
	rows    int
	offset  int
	frame   int // bumped when the log is rebuilt
	printed int // log lines already written for the current frame
	shown   int // frame last written
	clear   bool

	resumeEnabled bool
	resumeLabel   string
	busy          bool
}

// New creates a terminal surface.
func New(opts Options) *Surface {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	if opts.Printer == nil {
		opts.Printer = locale.New("")
	}
	return &Surface{
		out:     opts.Out,
		width:   opts.Width,
		height:  opts.Height,
		color:   opts.Color,
		printer: opts.Printer,
		text:    map[ui.Element]string{},
		fill:    map[ui.Element]float64{},
		visible: map[ui.Element]bool{ui.StartOverlay: true},
		shown:   -1,
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
}

func (s *Surface) ClearLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
	s.rows = 0
	s.printed = 0
	s.frame++
}

func (s *Surface) AppendLog(line ui.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, line)
	s.rows += len(wrapSpans(line.Spans, s.width))
}

func (s *Surface) LogMetrics() ui.LogMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ui.LogMetrics{Content: s.rows, Visible: s.height, Offset: s.offset}
}

// ScrollLog records the target. A terminal cannot scroll its own
// scrollback, so scrolling to the top clears the screen before the next
// frame and scrolling to the bottom is what printing does anyway.
func (s *Surface) ScrollLog(to ui.Scroll) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch to {
	case ui.ScrollTop:
		s.offset = 0
		s.clear = true
	case ui.ScrollBottom:
		s.offset = ui.LogMetrics{Content: s.rows, Visible: s.height}.MaxOffset()
	}
}

func (s *Surface) FocusInput() {}

func (s *Surface) ClearInput() {}

func (s *Surface) SetResume(enabled bool, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeEnabled = enabled
	s.resumeLabel = label
}

// Notify prints the notice at once.
func (s *Surface) Notify(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\n%s\n", s.style("!! "+msg, ansiBold, ansiRed))
}

// SetBusy prints a waiting line when a call starts.
func (s *Surface) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if busy && !s.busy {
		fmt.Fprintln(s.out, s.style(s.printer.Sprintf(locale.Loading), ansiDim))
	}
	s.busy = busy
}

// InGame reports whether the start overlay is gone.
func (s *Surface) InGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.visible[ui.StartOverlay]
}

// Flush writes whatever changed since the last flush: a full frame after a
// render, or only the new lines after an appended warning.
func (s *Surface) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.visible[ui.StartOverlay] {
		s.writeMenuLocked()
		return
	}
	var b strings.Builder
	if s.shown != s.frame {
		if s.clear && s.color {
			b.WriteString(ansiClear)
		}
		s.writeHeaderLocked(&b)
		s.shown = s.frame
		s.printed = 0
	}
	s.clear = false
	for _, line := range s.log[s.printed:] {
		s.writeLineLocked(&b, line)
	}
	s.printed = len(s.log)
	if p := s.text[ui.InputPrompt]; p != "" {
		b.WriteString(s.style(p, ansiBold))
		b.WriteString(" ")
	}
	io.WriteString(s.out, b.String())
}

func (s *Surface) writeMenuLocked() {
	var b strings.Builder
	// Warnings from a failed start show above the menu.
	for _, line := range s.log[s.printed:] {
		s.writeLineLocked(&b, line)
	}
	s.printed = len(s.log)

	b.WriteString("\n")
	b.WriteString(s.style("  1) "+s.printer.Sprintf(locale.NewGame), ansiBold))
	b.WriteString("\n")
	label := s.resumeLabel
	if label == "" {
		label = s.printer.Sprintf(locale.Continue)
	}
	if s.resumeEnabled {
		b.WriteString(s.style("  2) "+label, ansiBold))
	} else {
		b.WriteString(s.style("  2) "+label, ansiDim))
	}
	b.WriteString("\n")
	b.WriteString("  3) " + s.printer.Sprintf(locale.Tutorial) + "\n")
	b.WriteString("> ")
	io.WriteString(s.out, b.String())
}

func (s *Surface) writeHeaderLocked(b *strings.Builder) {
	b.WriteString("\n")
	if o := s.text[ui.ImageOverlay]; o != "" {
		b.WriteString(s.style("== "+o+" ==", ansiBold, ansiCyan))
		if s.image != "" {
			b.WriteString(s.style("  ["+s.image+"]", ansiDim))
		}
		b.WriteString("\n")
	}

	var stats []string
	if s.visible[ui.StatsBar] {
		stats = append(stats,
			s.style(s.text[ui.CharName], ansiBold),
			"HP "+s.bar(s.fill[ui.CharHPFill], true)+" "+s.text[ui.CharHPText],
			"EN "+s.bar(s.fill[ui.CharEnergyFill], false)+" "+s.text[ui.CharEnergyText],
			s.text[ui.InventoryCount],
		)
	}
	for _, el := range []ui.Element{ui.ProgressText, ui.StudentsText} {
		if t := s.text[el]; t != "" {
			stats = append(stats, t)
		}
	}
	if len(stats) > 0 {
		b.WriteString(strings.Join(stats, "  "))
		b.WriteString("\n")
	}

	if s.visible[ui.EnemyInfo] {
		b.WriteString(fmt.Sprintf("%s  %s  HP %s %s\n",
			s.style(s.text[ui.EnemyName], ansiBold, ansiRed),
			s.text[ui.EnemyLevel],
			s.bar(s.fill[ui.EnemyHPFill], true),
			s.text[ui.EnemyHPText],
		))
	}
	b.WriteString(strings.Repeat("-", s.width))
	b.WriteString("\n")
}

func (s *Surface) writeLineLocked(b *strings.Builder, line ui.Line) {
	for _, row := range wrapSpans(line.Spans, s.width) {
		text := colorize.Plain(row)
		if s.color {
			text = colorize.ANSI(row)
			if line.Type == "warning" {
				text = warningRow(row)
			}
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
}

// warningRow paints the plain parts of row red. Highlighted names keep
// their own colour and end with a reset, so red is applied per span.
func warningRow(row []colorize.Span) string {
	var b strings.Builder
	for _, sp := range row {
		if sp.Kind == colorize.KindPlain {
			b.WriteString(ansiRed + sp.Text + ansiReset)
			continue
		}
		b.WriteString(colorize.ANSI([]colorize.Span{sp}))
	}
	return b.String()
}

// bar draws a meter as filled and empty cells.
func (s *Surface) bar(percent float64, health bool) string {
	n := int(percent/100*barCells + 0.5)
	filled := strings.Repeat("#", n)
	if s.color {
		c := hud.ColorEnergy
		if health {
			c = hud.HealthColor(percent)
		}
		filled = fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s%s", c.R, c.G, c.B, filled, ansiReset)
	}
	return "[" + filled + strings.Repeat(".", barCells-n) + "]"
}

func (s *Surface) style(text string, attrs ...string) string {
	if !s.color || len(attrs) == 0 {
		return text
	}
	return strings.Join(attrs, "") + text + ansiReset
}
