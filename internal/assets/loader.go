package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/mhaclient/internal/placeholders"
)

// Source says where a loaded picture came from.
type Source int

const (
	SourceRemote      Source = iota // The requested path
	SourcePlaceholder               // The server's placeholder image
	SourceGenerated                 // Drawn locally
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourcePlaceholder:
		return "placeholder"
	default:
		return "generated"
	}
}

const maxImageBytes = 16 << 20

// Loader fetches pictures from the game server and caches decoded results.
type Loader struct {
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	placeholder string
	logger      *slog.Logger

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewLoader creates a loader for images below baseURL.
func NewLoader(baseURL string, pack *Pack, timeout time.Duration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Loader{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{},
		timeout:     timeout,
		placeholder: pack.Placeholder(),
		logger:      logger,
		cache:       map[string]image.Image{},
	}
}

// Load returns the picture at path. A failed fetch falls back to the
// placeholder exactly once, and a failed placeholder to generated art, so
// Load always returns an image.
func (l *Loader) Load(ctx context.Context, path string) (image.Image, Source) {
	img, err := l.fetchCached(ctx, path)
	if err == nil {
		if path == l.placeholder {
			return img, SourcePlaceholder
		}
		return img, SourceRemote
	}
	l.logger.Warn("image failed to load", "path", path, "error", err)

	if path != l.placeholder {
		img, err = l.fetchCached(ctx, l.placeholder)
		if err == nil {
			return img, SourcePlaceholder
		}
		l.logger.Warn("placeholder failed to load", "path", l.placeholder, "error", err)
	}
	return placeholders.Portrait(placeholders.PortraitWidth, placeholders.PortraitHeight, placeholders.ColorPalette.Hero), SourceGenerated
}

// Preload fetches paths concurrently into the cache. Individual failures are
// logged and skipped; only context cancellation is returned.
func (l *Loader) Preload(ctx context.Context, paths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, path := range paths {
		g.Go(func() error {
			if _, err := l.fetchCached(gctx, path); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				l.logger.Debug("preload skipped", "path", path, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Cached reports whether path is already decoded in memory.
func (l *Loader) Cached(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[path]
	return ok
}

func (l *Loader) fetchCached(ctx context.Context, path string) (image.Image, error) {
	l.mu.Lock()
	img, ok := l.cache[path]
	l.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := l.fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cache[path] = img
	l.mu.Unlock()
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, path string) (image.Image, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("image path %q must be absolute", path)
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// Fit scales img to cover a w×h box while keeping its aspect ratio, then
// crops the overflow evenly, like a CSS "object-fit: cover" background.
func Fit(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return dst
	}
	sb := img.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return dst
	}
	scale := float64(w) / float64(sb.Dx())
	if s := float64(h) / float64(sb.Dy()); s > scale {
		scale = s
	}
	cropW := int(float64(w) / scale)
	cropH := int(float64(h) / scale)
	if cropW > sb.Dx() {
		cropW = sb.Dx()
	}
	if cropH > sb.Dy() {
		cropH = sb.Dy()
	}
	x0 := sb.Min.X + (sb.Dx()-cropW)/2
	y0 := sb.Min.Y + (sb.Dy()-cropH)/2
	src := image.Rect(x0, y0, x0+cropW, y0+cropH)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst
}
