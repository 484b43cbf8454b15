package gui

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"chosenoffset.com/mhaclient/internal/assets"
	"chosenoffset.com/mhaclient/internal/colorize"
	"chosenoffset.com/mhaclient/internal/placeholders"
	"chosenoffset.com/mhaclient/internal/render"
	"chosenoffset.com/mhaclient/internal/ui"
)

// Every rune is 8px wide and a line is 16px tall at scale 1.
type fakeRenderer struct {
	texts    []string
	uploads  []image.Rectangle
	uploaded []*fakeImage
}

func (r *fakeRenderer) NewImage(w, h int) render.Image {
	return &fakeImage{bounds: image.Rect(0, 0, w, h)}
}

func (r *fakeRenderer) NewImageFromImage(src image.Image) render.Image {
	img := &fakeImage{bounds: src.Bounds()}
	r.uploads = append(r.uploads, src.Bounds())
	r.uploaded = append(r.uploaded, img)
	return img
}

func (r *fakeRenderer) FillRect(render.Image, float32, float32, float32, float32, color.Color) {}

func (r *fakeRenderer) StrokeRect(render.Image, float32, float32, float32, float32, float32, color.Color) {
}

func (r *fakeRenderer) DrawText(_ render.Image, text string, _, _ int, _ color.Color, _ float64) {
	r.texts = append(r.texts, text)
}

func (r *fakeRenderer) MeasureText(text string, scale float64) (int, int) {
	return int(float64(utf8.RuneCountInString(text)*8) * scale), int(16 * scale)
}

func (r *fakeRenderer) drew(s string) bool {
	for _, t := range r.texts {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

type fakeImage struct {
	bounds   image.Rectangle
	draws    int
	disposed bool
}

func (i *fakeImage) Bounds() image.Rectangle { return i.bounds }
func (i *fakeImage) SubImage(r image.Rectangle) render.Image { return &fakeImage{bounds: r} }
func (i *fakeImage) Fill(color.Color) {}
func (i *fakeImage) DrawImage(render.Image, *render.DrawImageOptions) {
	i.draws++
}
func (i *fakeImage) Dispose() { i.disposed = true }

type fakeInput struct {
	just     map[render.Key]bool
	repeated map[render.Key]bool
	chars    []rune
	click    bool
	x, y     int
	wheel    float64
}

func newFakeInput() *fakeInput {
	return &fakeInput{just: map[render.Key]bool{}, repeated: map[render.Key]bool{}}
}

func (f *fakeInput) IsKeyJustPressed(k render.Key) bool { return f.just[k] }
func (f *fakeInput) IsKeyRepeated(k render.Key) bool { return f.just[k] || f.repeated[k] }
func (f *fakeInput) GetCursorPosition() (int, int) { return f.x, f.y }
func (f *fakeInput) IsMouseButtonJustPressed(b render.MouseButton) bool {
	return b == render.MouseButtonLeft && f.click
}
func (f *fakeInput) Wheel() float64 { return f.wheel }
func (f *fakeInput) AppendInputChars(runes []rune) []rune {
	return append(runes, f.chars...)
}

func (f *fakeInput) reset() {
	f.just = map[render.Key]bool{}
	f.repeated = map[render.Key]bool{}
	f.chars = nil
	f.click = false
	f.wheel = 0
}

type fakeController struct {
	calls    []string
	canRetry bool
}

func (c *fakeController) StartNewGame(context.Context) error {
	c.calls = append(c.calls, "start")
	return nil
}

func (c *fakeController) ResumeGame(context.Context) error {
	c.calls = append(c.calls, "resume")
	return nil
}

func (c *fakeController) SubmitInput(_ context.Context, raw string) error {
	c.calls = append(c.calls, "input:"+raw)
	return nil
}

func (c *fakeController) Retry(context.Context) error {
	c.calls = append(c.calls, "retry")
	return nil
}

func (c *fakeController) CanRetry() bool { return c.canRetry }

type fakeImages struct {
	paths []string
}

func (f *fakeImages) Load(_ context.Context, path string) (image.Image, assets.Source) {
	f.paths = append(f.paths, path)
	return placeholders.Solid(64, 36, color.RGBA{200, 0, 0, 255}), assets.SourceRemote
}

type harness struct {
	v      *View
	r      *fakeRenderer
	in     *fakeInput
	ctrl   *fakeController
	images *fakeImages
	queue  []func()
}

func newHarness(t *testing.T, deferred bool) *harness {
	t.Helper()
	h := &harness{
		r:      &fakeRenderer{},
		in:     newFakeInput(),
		ctrl:   &fakeController{},
		images: &fakeImages{},
	}
	run := func(f func()) { f() }
	if deferred {
		run = func(f func()) { h.queue = append(h.queue, f) }
	}
	v, err := New(context.Background(), Options{
		Renderer: h.r,
		Input:    h.in,
		Images:   h.images,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Width:    1280,
		Height:   800,
		Tutorial: []string{"Type what you want to do."},
		Go:       run,
	})
	if err != nil {
		t.Fatalf("Failed to create view: %v", err)
	}
	v.Bind(h.ctrl)
	h.v = v
	return h
}

func (h *harness) tick(t *testing.T) {
	t.Helper()
	if err := h.v.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	h.in.reset()
}

func plain(text string) ui.Line {
	return ui.Line{Spans: []colorize.Span{{Text: text}}, Type: "normal"}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Error("Expected error without renderer")
	}
}

func TestAppendLogMeasuresWrappedRows(t *testing.T) {
	h := newHarness(t, false)
	h.v.AppendLog(plain("short"))
	if got := h.v.LogMetrics().Content; got != 22 {
		t.Errorf("Expected 22px for one row, got %d", got)
	}

	// 30 words of 40px each wrap at 17 per row in a 683px column.
	h.v.AppendLog(plain(strings.Repeat("word ", 30)))
	if got := h.v.LogMetrics().Content; got != 60 {
		t.Errorf("Expected 60px after a two-row line, got %d", got)
	}

	h.v.ClearLog()
	if got := h.v.LogMetrics().Content; got != 0 {
		t.Errorf("Expected empty log, got %d", got)
	}
}

func TestScrollClampsToContent(t *testing.T) {
	h := newHarness(t, false)
	for i := 0; i < 50; i++ {
		h.v.AppendLog(plain("line"))
	}
	m := h.v.LogMetrics()
	if m.Visible != 690 {
		t.Fatalf("Expected 690px viewport, got %d", m.Visible)
	}

	h.v.ScrollLog(ui.ScrollBottom)
	if got := h.v.LogMetrics().Offset; got != 410 {
		t.Errorf("Expected offset 410 at bottom, got %d", got)
	}

	h.v.SetVisible(ui.StartOverlay, false)
	h.in.wheel = 100
	h.tick(t)
	if got := h.v.LogMetrics().Offset; got != 0 {
		t.Errorf("Expected wheel up to clamp at 0, got %d", got)
	}

	h.in.just[render.KeyEnd] = true
	h.tick(t)
	if got := h.v.LogMetrics().Offset; got != 410 {
		t.Errorf("Expected End to reach the bottom, got %d", got)
	}
	h.in.just[render.KeyHome] = true
	h.tick(t)
	if got := h.v.LogMetrics().Offset; got != 0 {
		t.Errorf("Expected Home to reach the top, got %d", got)
	}
}

func TestStartOverlayClick(t *testing.T) {
	h := newHarness(t, false)
	h.in.click = true
	h.in.x, h.in.y = 520, 370
	h.tick(t)

	if len(h.ctrl.calls) != 1 || h.ctrl.calls[0] != "start" {
		t.Errorf("Expected NEW GAME to start, got %v", h.ctrl.calls)
	}
}

func TestContinueNeedsSave(t *testing.T) {
	h := newHarness(t, false)
	h.in.chars = []rune("2")
	h.tick(t)
	if len(h.ctrl.calls) != 0 {
		t.Errorf("Expected disabled CONTINUE to do nothing, got %v", h.ctrl.calls)
	}

	h.v.SetResume(true, "CONTINUE (Zone 3)")
	h.in.chars = []rune("2")
	h.tick(t)
	if len(h.ctrl.calls) != 1 || h.ctrl.calls[0] != "resume" {
		t.Errorf("Expected resume, got %v", h.ctrl.calls)
	}

	h.v.Draw(&fakeImage{bounds: image.Rect(0, 0, 1280, 800)})
	if !h.r.drew("CONTINUE (Zone 3)") {
		t.Error("Expected resume label on the overlay")
	}
}

func TestRetryEntryOnlyAfterFailure(t *testing.T) {
	h := newHarness(t, false)
	h.in.chars = []rune("4")
	h.tick(t)
	if len(h.ctrl.calls) != 0 {
		t.Errorf("Expected no retry entry, got %v", h.ctrl.calls)
	}

	h.ctrl.canRetry = true
	h.in.chars = []rune("4")
	h.tick(t)
	if len(h.ctrl.calls) != 1 || h.ctrl.calls[0] != "retry" {
		t.Errorf("Expected retry, got %v", h.ctrl.calls)
	}

	h.in.just[render.KeyF5] = true
	h.tick(t)
	if len(h.ctrl.calls) != 2 {
		t.Errorf("Expected F5 to retry, got %v", h.ctrl.calls)
	}
}

func TestTutorialToggle(t *testing.T) {
	h := newHarness(t, false)
	h.in.chars = []rune("3")
	h.tick(t)
	h.v.Draw(&fakeImage{bounds: image.Rect(0, 0, 1280, 800)})
	if !h.r.drew("Type what you want to do.") {
		t.Error("Expected tutorial text after HOW TO PLAY")
	}
}

func TestTypingAndSubmit(t *testing.T) {
	h := newHarness(t, false)
	h.v.SetVisible(ui.StartOverlay, false)

	h.in.chars = []rune("hi")
	h.tick(t)
	h.in.repeated[render.KeyBackspace] = true
	h.tick(t)
	h.in.chars = []rune("ey")
	h.tick(t)
	if got := h.v.Typed(); got != "hey" {
		t.Fatalf("Expected 'hey', got '%s'", got)
	}

	h.in.just[render.KeyEnter] = true
	h.tick(t)
	if len(h.ctrl.calls) != 1 || h.ctrl.calls[0] != "input:hey" {
		t.Errorf("Expected input:hey, got %v", h.ctrl.calls)
	}

	h.v.ClearInput()
	if got := h.v.Typed(); got != "" {
		t.Errorf("Expected cleared input, got '%s'", got)
	}
}

func TestSetImageUploadsFittedPicture(t *testing.T) {
	h := newHarness(t, false)
	h.v.SetImage("zones/forest.png")
	if len(h.images.paths) != 1 || h.images.paths[0] != "zones/forest.png" {
		t.Fatalf("Expected one load, got %v", h.images.paths)
	}

	h.tick(t)
	if len(h.r.uploads) != 1 {
		t.Fatalf("Expected one upload, got %d", len(h.r.uploads))
	}
	want := image.Rect(0, 0, h.v.lay.image.w, h.v.lay.image.h)
	if h.r.uploads[0] != want {
		t.Errorf("Expected picture fitted to %v, got %v", want, h.r.uploads[0])
	}

	h.v.SetImage("")
	h.tick(t)
	if len(h.r.uploads) != 2 {
		t.Fatalf("Expected a black frame upload, got %d uploads", len(h.r.uploads))
	}
	if !h.r.uploaded[0].disposed {
		t.Error("Expected the old picture to be disposed")
	}
	if len(h.images.paths) != 1 {
		t.Errorf("Expected no load for an empty path, got %v", h.images.paths)
	}
}

func TestStaleImageLoadIsDropped(t *testing.T) {
	h := newHarness(t, true)
	h.v.SetImage("a.png")
	h.v.SetImage("b.png")

	h.queue[0]()
	if h.v.pending != nil {
		t.Error("Expected the superseded load to be dropped")
	}
	h.queue[1]()
	if h.v.pending == nil {
		t.Error("Expected the current load to be kept")
	}
}

func TestNoticeDismissal(t *testing.T) {
	h := newHarness(t, false)
	h.v.Notify("No save found!")
	h.v.Draw(&fakeImage{bounds: image.Rect(0, 0, 1280, 800)})
	if !h.r.drew("No save found!") {
		t.Error("Expected notice to be drawn")
	}

	// Input is swallowed while a notice is up.
	h.in.chars = []rune("1")
	h.in.just[render.KeyEnter] = true
	h.tick(t)
	if len(h.ctrl.calls) != 0 {
		t.Errorf("Expected no calls under a notice, got %v", h.ctrl.calls)
	}
	if h.v.notice != "" {
		t.Error("Expected Enter to dismiss the notice")
	}

	h.v.Notify("Save corrupted!")
	for i := 0; i < noticeTicks; i++ {
		h.tick(t)
	}
	if h.v.notice != "" {
		t.Error("Expected the notice to expire")
	}
}

func TestDrawGameScreen(t *testing.T) {
	h := newHarness(t, false)
	v := h.v
	v.SetVisible(ui.StartOverlay, false)
	v.SetText(ui.ImageOverlay, "Zone 1 - Forest")
	v.SetVisible(ui.ZoneInfo, true)
	v.SetText(ui.ZoneInfo, "Zone 1 - Forest")
	v.SetVisible(ui.StatsBar, true)
	v.SetText(ui.CharName, "Izuku Midoriya")
	v.SetFill(ui.CharHPFill, 50)
	v.SetText(ui.CharHPText, "50/100")
	v.SetText(ui.InputPrompt, "What do you do?")
	v.AppendLog(ui.Line{Spans: []colorize.Span{
		{Text: "Izuku", Color: "#00ff00", Kind: colorize.KindCharacter},
		{Text: " enters the forest."},
	}})
	v.SetBusy(true)

	v.Draw(&fakeImage{bounds: image.Rect(0, 0, 1280, 800)})
	for _, want := range []string{"Zone 1 - Forest", "Izuku Midoriya", "50/100", "What do you do?", "Izuku", " enters the forest.", "Waiting for server..."} {
		if !h.r.drew(want) {
			t.Errorf("Expected %q to be drawn", want)
		}
	}
}

type fakeGeoM struct{ tx, ty float64 }

func (g *fakeGeoM) Translate(tx, ty float64) {
	g.tx += tx
	g.ty += ty
}

func TestDrawCentersSmallPicture(t *testing.T) {
	var geo *fakeGeoM
	prev := render.NewGeoM
	render.NewGeoM = func() render.GeoM {
		geo = &fakeGeoM{}
		return geo
	}
	defer func() { render.NewGeoM = prev }()

	h := newHarness(t, false)
	v := h.v
	v.SetVisible(ui.StartOverlay, false)
	v.picture = &fakeImage{bounds: image.Rect(0, 0, 100, 50)}
	v.Draw(&fakeImage{bounds: image.Rect(0, 0, 1280, 800)})

	if geo == nil {
		t.Fatal("Expected the picture to be drawn")
	}
	box := v.lay.image
	wantX := float64(box.x + (box.w-100)/2)
	wantY := float64(box.y + (box.h-50)/2)
	if geo.tx != wantX || geo.ty != wantY {
		t.Errorf("Expected picture at (%v, %v), got (%v, %v)", wantX, wantY, geo.tx, geo.ty)
	}
}
