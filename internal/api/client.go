package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

// ErrTransport marks failures where no usable reply came back from the
// server: dial errors, timeouts, 5xx pages and undecodable bodies.
var ErrTransport = errors.New("transport failure")

const (
	defaultTimeout   = 15 * time.Second
	defaultRetries   = 2
	defaultRetryWait = 300 * time.Millisecond
	maxBodyBytes     = 4 << 20
)

// Client calls the two game server endpoints.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	retries   uint
	retryWait time.Duration
	logger    *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout bounds every single attempt. Default: 15s.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithRetries sets how many extra attempts follow a transport failure. Default: 2.
func WithRetries(n uint) Option { return func(c *Client) { c.retries = n } }

// WithRetryWait sets the first backoff interval. Default: 300ms.
func WithRetryWait(d time.Duration) Option { return func(c *Client) { c.retryWait = d } }

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New creates a client for the server rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("server url is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:   u,
		http:      &http.Client{},
		timeout:   defaultTimeout,
		retries:   defaultRetries,
		retryWait: defaultRetryWait,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Start opens a new game session.
func (c *Client) Start(ctx context.Context) (*StartResponse, error) {
	var out StartResponse
	status, err := c.post(ctx, "/api/start", nil, &out, true)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("%w: start returned status %d", ErrTransport, status)
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("%w: start reply has no session id", ErrTransport)
	}
	return &out, nil
}

// Input forwards one line of player input. A logical rejection by the server
// (for example an unknown session) comes back as a reply with Error set and
// a nil error.
func (c *Client) Input(ctx context.Context, sessionID, input string) (*InputResponse, error) {
	body, err := json.Marshal(InputRequest{SessionID: sessionID, Input: input})
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	var out InputResponse
	// The server applies every input it receives, so an input is only
	// resent when it never left this process.
	status, err := c.post(ctx, "/api/input", body, &out, false)
	if err != nil {
		return nil, err
	}
	if out.State == nil && out.Error == "" {
		return nil, fmt.Errorf("%w: input returned status %d with neither state nor error", ErrTransport, status)
	}
	return &out, nil
}

// post sends one JSON request and decodes the reply into out. Transport
// failures are retried with exponential backoff. When replayable is false
// only failures that happened before the request was written are retried.
func (c *Client) post(ctx context.Context, path string, body []byte, out any, replayable bool) (int, error) {
	endpoint := c.baseURL.JoinPath(path).String()
	requestID := uuid.NewString()

	attempt := 0
	op := func() (int, error) {
		attempt++
		status, err := c.do(ctx, endpoint, requestID, body, out)
		if err == nil {
			return status, nil
		}
		if ctx.Err() != nil {
			return status, backoff.Permanent(err)
		}
		var re *retryableError
		if errors.As(err, &re) && (replayable || !re.sent) {
			c.logger.Debug("request failed, will retry", "path", path, "request_id", requestID, "attempt", attempt, "error", err)
			return status, err
		}
		return status, backoff.Permanent(err)
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.retryWait,
		RandomizationFactor: 0.5,
		Multiplier:          2,
		MaxInterval:         5 * time.Second,
	}
	status, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.retries+1),
	)
	if err != nil {
		var re *retryableError
		if errors.As(err, &re) {
			err = re.err
		}
		return status, err
	}
	return status, nil
}

// retryableError is a transport failure. sent is false when the request
// provably never reached the server.
type retryableError struct {
	err  error
	sent bool
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, endpoint, requestID string, body []byte, out any) (int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &retryableError{err: fmt.Errorf("%w: %w", ErrTransport, err), sent: !dialFailed(err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, &retryableError{err: fmt.Errorf("%w: read body: %w", ErrTransport, err), sent: true}
	}
	if resp.StatusCode >= 500 {
		return resp.StatusCode, &retryableError{err: fmt.Errorf("%w: server returned status %d", ErrTransport, resp.StatusCode), sent: true}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode reply (status %d): %w", ErrTransport, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

// dialFailed reports whether err came from opening the connection, before
// any request bytes were written.
func dialFailed(err error) bool {
	var op *net.OpError
	return errors.As(err, &op) && op.Op == "dial"
}
