package api_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"chosenoffset.com/mhaclient/internal/api"
	"chosenoffset.com/mhaclient/internal/api/apitest"
)

func TestStartReturnsSessionAndState(t *testing.T) {
	srv := apitest.New("abc123", api.Snapshot{GameState: api.StateIntro, Theme: "intro"})
	defer srv.Close()

	c, err := api.New(srv.URL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	resp, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if resp.SessionID != "abc123" {
		t.Errorf("Expected session 'abc123', got '%s'", resp.SessionID)
	}
	if resp.State.GameState != api.StateIntro {
		t.Errorf("Expected game_state 'intro', got '%s'", resp.State.GameState)
	}
}

func TestInputSendsSessionAndText(t *testing.T) {
	srv := apitest.New("s1", api.Snapshot{GameState: api.StateIntro})
	defer srv.Close()
	srv.Queue(apitest.Reply{State: &api.Snapshot{GameState: api.StateNavigation, Zone: 2}})

	c, _ := api.New(srv.URL)
	resp, err := c.Input(context.Background(), "s1", "north")
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if resp.State == nil || resp.State.Zone != 2 {
		t.Fatalf("Expected zone 2 state, got %+v", resp.State)
	}

	inputs := srv.Inputs()
	if len(inputs) != 1 {
		t.Fatalf("Expected 1 input, got %d", len(inputs))
	}
	if inputs[0].SessionID != "s1" || inputs[0].Input != "north" {
		t.Errorf("Expected {s1 north}, got %+v", inputs[0])
	}
}

func TestInputInvalidSessionIsLogicalError(t *testing.T) {
	srv := apitest.New("s1", api.Snapshot{})
	defer srv.Close()

	c, _ := api.New(srv.URL)
	resp, err := c.Input(context.Background(), "wrong", "x")
	if err != nil {
		t.Fatalf("Expected no transport error, got %v", err)
	}
	if resp.Error != "Invalid session" {
		t.Errorf("Expected 'Invalid session', got '%s'", resp.Error)
	}
}

func TestStartRetriesServerErrors(t *testing.T) {
	srv := apitest.New("s1", api.Snapshot{GameState: api.StateIntro})
	defer srv.Close()
	srv.FailStarts(2)

	c, _ := api.New(srv.URL, api.WithRetries(2), api.WithRetryWait(time.Millisecond))
	if _, err := c.Start(context.Background()); err != nil {
		t.Fatalf("Expected start to succeed after retries, got %v", err)
	}
	if hits := srv.Hits("/api/start"); hits != 3 {
		t.Errorf("Expected 3 attempts, got %d", hits)
	}
}

func TestStartGivesUpAfterRetries(t *testing.T) {
	srv := apitest.New("s1", api.Snapshot{})
	defer srv.Close()
	srv.FailStarts(10)

	c, _ := api.New(srv.URL, api.WithRetries(1), api.WithRetryWait(time.Millisecond))
	_, err := c.Start(context.Background())
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if hits := srv.Hits("/api/start"); hits != 2 {
		t.Errorf("Expected 2 attempts, got %d", hits)
	}
}

func TestSlowInputIsSentOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"state":{"game_state":"navigation"}}`))
	}))
	defer srv.Close()

	c, _ := api.New(srv.URL,
		api.WithTimeout(100*time.Millisecond),
		api.WithRetries(2),
		api.WithRetryWait(time.Millisecond),
	)
	_, err := c.Input(context.Background(), "s", "1")
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("Expected ErrTransport on timeout, got %v", err)
	}
	// Let the first handler finish so a late resend would be counted.
	time.Sleep(400 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("Expected the server to receive the action once, got %d", n)
	}
}

func TestInputServerErrorIsNotResent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := api.New(srv.URL, api.WithRetries(2), api.WithRetryWait(time.Millisecond))
	_, err := c.Input(context.Background(), "s", "attack")
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("Expected 1 call, got %d", n)
	}
}

type countingTransport struct {
	n atomic.Int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.n.Add(1)
	return http.DefaultTransport.RoundTrip(r)
}

func TestInputRetriesRefusedConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	rt := &countingTransport{}
	c, _ := api.New("http://"+addr,
		api.WithHTTPClient(&http.Client{Transport: rt}),
		api.WithRetries(2),
		api.WithRetryWait(time.Millisecond),
	)
	_, err = c.Input(context.Background(), "s", "attack")
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if n := rt.n.Load(); n != 3 {
		t.Errorf("Expected 3 attempts, got %d", n)
	}
}

func TestUndecodableReplyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c, _ := api.New(srv.URL, api.WithRetryWait(time.Millisecond))
	_, err := c.Input(context.Background(), "s", "x")
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", calls.Load())
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := api.New(srv.URL,
		api.WithTimeout(20*time.Millisecond),
		api.WithRetries(0),
	)
	start := time.Now()
	_, err := c.Start(context.Background())
	if !errors.Is(err, api.ErrTransport) {
		t.Fatalf("Expected ErrTransport on timeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Expected the timeout to cut the request short, took %v", time.Since(start))
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "::"} {
		if _, err := api.New(raw); err == nil {
			t.Errorf("Expected error for %q", raw)
		}
	}
}

func TestMessageStyleDefault(t *testing.T) {
	if got := (api.Message{Text: "hi"}).Style(); got != api.MessageNormal {
		t.Errorf("Expected 'normal', got '%s'", got)
	}
	if got := (api.Message{Text: "hi", Type: "warning"}).Style(); got != "warning" {
		t.Errorf("Expected 'warning', got '%s'", got)
	}
}
