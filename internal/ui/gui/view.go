// Package gui is the window front end. View keeps the screen state the
// client writes through ui.Surface and draws it every frame through the
// render interfaces, so it runs on ebiten in the binary and on fakes in
// tests.
package gui

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"chosenoffset.com/mhaclient/internal/assets"
	"chosenoffset.com/mhaclient/internal/client"
	"chosenoffset.com/mhaclient/internal/colorize"
	"chosenoffset.com/mhaclient/internal/locale"
	"chosenoffset.com/mhaclient/internal/placeholders"
	"chosenoffset.com/mhaclient/internal/render"
	"chosenoffset.com/mhaclient/internal/ui"
)

// noticeTicks is how long a notice stays up without a click (3s at 60 TPS).
const noticeTicks = 180

// Controller is the part of the client the window drives.
type Controller interface {
	StartNewGame(ctx context.Context) error
	ResumeGame(ctx context.Context) error
	SubmitInput(ctx context.Context, raw string) error
	Retry(ctx context.Context) error
	CanRetry() bool
}

// ImageLoader turns an asset path into a picture. It never fails; the
// loader falls back to generated art.
type ImageLoader interface {
	Load(ctx context.Context, path string) (image.Image, assets.Source)
}

// Options configures a View.
type Options struct {
	Renderer render.Renderer
	Input    render.InputManager
	Images   ImageLoader
	Printer  *locale.Printer
	Logger   *slog.Logger
	Width    int
	Height   int
	Title    string
	Tutorial []string
	// Go runs background work. Defaults to starting a goroutine.
	Go func(func())
}

type logEntry struct {
	line ui.Line
	rows [][]colorize.Span
}

// View implements ui.Surface and render.Game.
type View struct {
	ctx      context.Context
	r        render.Renderer
	input    render.InputManager
	images   ImageLoader
	printer  *locale.Printer
	logger   *slog.Logger
	title    string
	tutorial []string
	run      func(func())
	ctrl     Controller

	width, height int
	lay           layout
	lineHeight    int

	mu      sync.Mutex
	text    map[ui.Element]string
	fill    map[ui.Element]float64
	visible map[ui.Element]bool

	imagePath string
	pending   image.Image // decoded, waiting for upload on the game thread
	picture   render.Image

	log     []logEntry
	content int
	offset  int

	resumeEnabled bool
	resumeLabel   string
	notice        string
	noticeLeft    int
	busy          bool
	showTutorial  bool

	typed   []rune
	focused bool
	ticks   int
}

// New creates a view. Bind must be called before the loop starts.
func New(ctx context.Context, opts Options) (*View, error) {
	if opts.Renderer == nil || opts.Input == nil || opts.Images == nil {
		return nil, errors.New("gui: renderer, input and images are required")
	}
	if opts.Printer == nil {
		opts.Printer = locale.New("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Go == nil {
		opts.Go = func(f func()) { go f() }
	}
	if opts.Title == "" {
		opts.Title = "MHA ROGUELIKE"
	}
	_, lh := opts.Renderer.MeasureText("Mg", 1)
	if lh <= 0 {
		lh = 18
	}
	return &View{
		ctx:        ctx,
		r:          opts.Renderer,
		input:      opts.Input,
		images:     opts.Images,
		printer:    opts.Printer,
		logger:     opts.Logger,
		title:      opts.Title,
		tutorial:   opts.Tutorial,
		run:        opts.Go,
		width:      opts.Width,
		height:     opts.Height,
		lay:        newLayout(opts.Width, opts.Height),
		lineHeight: lh,
		text:       map[ui.Element]string{},
		fill:       map[ui.Element]float64{},
		visible:    map[ui.Element]bool{ui.StartOverlay: true},
	}, nil
}

// Bind attaches the controller that button presses and input call.
func (v *View) Bind(ctrl Controller) {
	v.ctrl = ctrl
}

func (v *View) SetText(el ui.Element, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.text[el] = text
}

func (v *View) SetFill(el ui.Element, percent float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fill[el] = percent
}

func (v *View) SetVisible(el ui.Element, visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible[el] = visible
}

// SetImage loads path in the background. An empty path blanks the picture.
func (v *View) SetImage(path string) {
	v.mu.Lock()
	v.imagePath = path
	v.pending = nil
	if path == "" {
		v.pending = placeholders.Black(v.lay.image.w, v.lay.image.h)
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	v.run(func() {
		img, src := v.images.Load(v.ctx, path)
		if src != assets.SourceRemote {
			v.logger.Debug("using fallback image", "path", path, "source", src)
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		// A newer scene may have replaced the picture while this loaded.
		if v.imagePath == path {
			v.pending = img
		}
	})
}

func (v *View) ClearLog() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log = nil
	v.content = 0
}

func (v *View) AppendLog(line ui.Line) {
	rows := wrapSpans(v.r, line.Spans, v.lay.log.w-2*padding)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log = append(v.log, logEntry{line: line, rows: rows})
	v.content += len(rows)*v.lineHeight + paraGap
}

func (v *View) LogMetrics() ui.LogMetrics {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.metricsLocked()
}

func (v *View) metricsLocked() ui.LogMetrics {
	return ui.LogMetrics{Content: v.content, Visible: v.lay.log.h - 2*padding, Offset: v.offset}
}

func (v *View) ScrollLog(to ui.Scroll) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch to {
	case ui.ScrollTop:
		v.offset = 0
	case ui.ScrollBottom:
		v.offset = v.metricsLocked().MaxOffset()
	}
}

// scrollBy moves the log by delta pixels, clamped to the content.
func (v *View) scrollBy(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset += delta
	if limit := v.metricsLocked().MaxOffset(); v.offset > limit {
		v.offset = limit
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

func (v *View) FocusInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focused = true
}

func (v *View) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typed = v.typed[:0]
}

func (v *View) SetResume(enabled bool, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resumeEnabled = enabled
	v.resumeLabel = label
}

func (v *View) Notify(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = msg
	v.noticeLeft = noticeTicks
}

func (v *View) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = busy
}

// Typed returns the current contents of the input line.
func (v *View) Typed() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return string(v.typed)
}

// Layout keeps a fixed logical size; ebiten scales it to the window.
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

// dispatch runs a controller call in the background. Failures are already
// on screen by the time the call returns.
func (v *View) dispatch(name string, call func(ctx context.Context) error) {
	if v.ctrl == nil {
		return
	}
	v.run(func() {
		err := call(v.ctx)
		switch {
		case err == nil:
		case errors.Is(err, client.ErrBusy):
			v.logger.Debug("ignored while busy", "action", name)
		default:
			v.logger.Debug("action failed", "action", name, "error", err)
		}
	})
}

// uploadPending turns a decoded picture into a texture. It must run on the
// game thread.
func (v *View) uploadPending() {
	v.mu.Lock()
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()
	if pending == nil {
		return
	}

	fitted := assets.Fit(pending, v.lay.image.w, v.lay.image.h)
	if v.picture != nil {
		v.picture.Dispose()
	}
	v.picture = v.r.NewImageFromImage(fitted)
}
