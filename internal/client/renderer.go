// Package client keeps a rendering surface in sync with the game server. It
// owns the session id, the current snapshot and the resume slot; the server
// owns every game rule.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"

	"chosenoffset.com/mhaclient/internal/api"
	"chosenoffset.com/mhaclient/internal/assets"
	"chosenoffset.com/mhaclient/internal/locale"
	"chosenoffset.com/mhaclient/internal/save"
	"chosenoffset.com/mhaclient/internal/ui"
)

// ScrollThreshold is how close to the bottom, in surface units, the log
// viewport must be for a same-screen update to follow new content.
const ScrollThreshold = 50

var (
	// ErrBusy is returned when a network operation is already in flight.
	ErrBusy = errors.New("a request is already in flight")
	// ErrNoSession is returned by SubmitInput before a game is started or resumed.
	ErrNoSession = errors.New("no active session")
)

// GameServer is the remote side of the game.
type GameServer interface {
	Start(ctx context.Context) (*api.StartResponse, error)
	Input(ctx context.Context, sessionID, input string) (*api.InputResponse, error)
}

// Options configures a Renderer. Server, Store and Surface are required.
type Options struct {
	Server  GameServer
	Store   save.Store
	Surface ui.Surface
	Pack    *assets.Pack
	Logger  *slog.Logger
	Now     func() time.Time
	Printer *locale.Printer
}

type callKind int

const (
	callNone callKind = iota
	callStart
	callInput
)

func (k callKind) String() string {
	switch k {
	case callStart:
		return "start"
	case callInput:
		return "input"
	default:
		return "none"
	}
}

// failedCall remembers the last network call that failed, for Retry.
type failedCall struct {
	kind  callKind
	input string
}

// Renderer drives a Surface from server snapshots.
type Renderer struct {
	server  GameServer
	slot    *save.Slot
	surface ui.Surface
	pack    *assets.Pack
	logger  *slog.Logger
	now     func() time.Time
	printer *locale.Printer

	busy atomic.Bool

	mu            sync.Mutex
	sessionID     string
	state         *api.Snapshot
	lastGameState string
	rendered      bool
	failed        failedCall
}

// New creates a Renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Server == nil {
		return nil, fmt.Errorf("client: server is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("client: store is required")
	}
	if opts.Surface == nil {
		return nil, fmt.Errorf("client: surface is required")
	}
	r := &Renderer{
		server:  opts.Server,
		slot:    save.NewSlot(opts.Store),
		surface: opts.Surface,
		pack:    opts.Pack,
		logger:  opts.Logger,
		now:     opts.Now,
		printer: opts.Printer,
	}
	if r.pack == nil {
		r.pack = assets.Default()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.printer == nil {
		r.printer = locale.New("")
	}
	return r, nil
}

// Startup checks the resume slot and sets up the start overlay. A record
// that cannot be decoded is removed without telling the user. A well-formed
// record this client cannot resume is kept.
func (r *Renderer) Startup(ctx context.Context) {
	r.surface.SetVisible(ui.StartOverlay, true)

	rec, err := r.slot.Load(ctx)
	switch {
	case err == nil:
		r.surface.SetResume(true, r.printer.Sprintf(locale.ContinueZone, rec.Zone))
		return
	case errors.Is(err, save.ErrNoSave):
	case errors.Is(err, save.ErrCorrupt):
		r.logger.Warn("discarding unreadable save", "error", err)
		if err := r.slot.Clear(ctx); err != nil {
			r.logger.Warn("failed to discard save", "error", err)
		}
	case errors.Is(err, save.ErrUnusable):
		r.logger.Warn("keeping save this client cannot resume", "error", err)
	default:
		r.logger.Warn("failed to read save", "error", err)
	}
	r.surface.SetResume(false, r.printer.Sprintf(locale.Continue))
}

// StartNewGame opens a session on the server and renders its first
// snapshot. A failure is reported in the log, leaves the start overlay up
// and can be repeated with Retry.
func (r *Renderer) StartNewGame(ctx context.Context) error {
	if !r.acquire() {
		return ErrBusy
	}
	defer r.release()
	return r.start(ctx)
}

func (r *Renderer) start(ctx context.Context) error {
	resp, err := r.server.Start(ctx)
	if err != nil {
		r.setFailed(failedCall{kind: callStart})
		r.warn(r.printer.Sprintf(locale.StartFailed, err))
		return fmt.Errorf("start game: %w", err)
	}

	r.mu.Lock()
	r.sessionID = resp.SessionID
	r.rendered = false
	r.failed = failedCall{}
	r.mu.Unlock()

	r.surface.SetVisible(ui.StartOverlay, false)
	r.Render(ctx, resp.State)
	return nil
}

// ResumeGame restores the saved session without contacting the server.
func (r *Renderer) ResumeGame(ctx context.Context) error {
	if !r.acquire() {
		return ErrBusy
	}
	defer r.release()

	rec, err := r.slot.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, save.ErrCorrupt):
		r.surface.Notify(r.printer.Sprintf(locale.SaveCorrupted))
		if err := r.slot.Clear(ctx); err != nil {
			r.logger.Warn("failed to discard save", "error", err)
		}
		r.Startup(ctx)
		return err
	case errors.Is(err, save.ErrUnusable):
		r.surface.Notify(r.printer.Sprintf(locale.SaveUnusable))
		r.surface.SetResume(false, r.printer.Sprintf(locale.Continue))
		return err
	case errors.Is(err, save.ErrNoSave):
		r.surface.Notify(r.printer.Sprintf(locale.NoSave))
		return err
	default:
		r.logger.Warn("failed to read save", "error", err)
		r.surface.Notify(r.printer.Sprintf(locale.NoSave))
		return err
	}

	r.mu.Lock()
	r.sessionID = rec.SessionID
	r.rendered = false
	r.failed = failedCall{}
	r.mu.Unlock()

	r.surface.SetVisible(ui.StartOverlay, false)
	r.Render(ctx, rec.GameState)
	return nil
}

// SubmitInput sends one line of player input. Empty input is only sent,
// as "continue", when the server is waiting for a bare continuation.
func (r *Renderer) SubmitInput(ctx context.Context, raw string) error {
	r.mu.Lock()
	sid := r.sessionID
	pending := ""
	if r.state != nil {
		pending = r.state.PendingInput
	}
	r.mu.Unlock()

	if sid == "" {
		return ErrNoSession
	}
	text := normalizeInput(raw)
	if text == "" {
		if pending != api.PendingContinue {
			return nil
		}
		text = api.PendingContinue
	}

	if !r.acquire() {
		return ErrBusy
	}
	defer r.release()

	r.surface.ClearInput()
	return r.input(ctx, sid, text)
}

func (r *Renderer) input(ctx context.Context, sid, text string) error {
	resp, err := r.server.Input(ctx, sid, text)
	if err != nil {
		r.setFailed(failedCall{kind: callInput, input: text})
		r.warn(r.printer.Sprintf(locale.ConnectionError, err))
		return fmt.Errorf("send input: %w", err)
	}
	r.setFailed(failedCall{})

	if resp.Error != "" {
		r.warn(resp.Error)
		return nil
	}
	if resp.State != nil {
		r.Render(ctx, *resp.State)
	}
	return nil
}

// Retry repeats the last failed start or input call. It does nothing when
// the last call succeeded.
func (r *Renderer) Retry(ctx context.Context) error {
	r.mu.Lock()
	failed := r.failed
	sid := r.sessionID
	r.mu.Unlock()

	if failed.kind == callNone {
		return nil
	}
	if !r.acquire() {
		return ErrBusy
	}
	defer r.release()

	r.logger.Info("retrying failed request", "call", failed.kind.String())
	switch failed.kind {
	case callStart:
		return r.start(ctx)
	default:
		return r.input(ctx, sid, failed.input)
	}
}

// CanRetry reports whether Retry has a failed call to repeat.
func (r *Renderer) CanRetry() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed.kind != callNone
}

// SessionID returns the active session id, or "" before a game starts.
func (r *Renderer) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// State returns a copy of the last rendered snapshot.
func (r *Renderer) State() (api.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return api.Snapshot{}, false
	}
	return *r.state, true
}

func (r *Renderer) acquire() bool {
	if !r.busy.CompareAndSwap(false, true) {
		return false
	}
	r.surface.SetBusy(true)
	return true
}

func (r *Renderer) release() {
	r.surface.SetBusy(false)
	r.busy.Store(false)
}

func (r *Renderer) setFailed(f failedCall) {
	r.mu.Lock()
	r.failed = f
	r.mu.Unlock()
}

// warn appends an error line without touching the rest of the log. The
// viewport follows it only when the reader was already at the bottom.
func (r *Renderer) warn(msg string) {
	before := r.surface.LogMetrics()
	text := r.printer.Sprintf(locale.ErrorPrefix, msg)
	r.surface.AppendLog(ui.Line{
		Spans: r.pack.Colorizer().Spans(text),
		Type:  api.MessageWarning,
	})
	if before.NearBottom(ScrollThreshold) {
		r.surface.ScrollLog(ui.ScrollBottom)
	}
}

func normalizeInput(raw string) string {
	s := strings.ReplaceAll(raw, "\r", "")
	return strings.TrimSpace(norm.NFC.String(s))
}
