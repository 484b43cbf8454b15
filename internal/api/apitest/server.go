// Package apitest provides an in-process game server for tests. It speaks the
// same two endpoints as the real server and serves image files from memory,
// but plays back scripted snapshots instead of running any game rules.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"chosenoffset.com/mhaclient/internal/api"
)

// Server is a scripted fake of the game server.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	sessionID string
	start     api.Snapshot
	replies   []Reply
	inputs    []api.InputRequest
	images    map[string][]byte
	hits      map[string]int
	startFail int
}

// Reply is one scripted answer to POST /api/input.
type Reply struct {
	State  *api.Snapshot
	Error  string
	Status int // 0 means 200, or 400 when Error is set
}

// New starts a fake server that hands out sessionID and the given initial
// snapshot on /api/start.
func New(sessionID string, start api.Snapshot) *Server {
	s := &Server{
		sessionID: sessionID,
		start:     start,
		images:    map[string][]byte{},
		hits:      map[string]int{},
	}
	r := chi.NewRouter()
	r.Post("/api/start", s.handleStart)
	r.Post("/api/input", s.handleInput)
	r.Get("/images/*", s.handleImage)
	s.Server = httptest.NewServer(r)
	return s
}

// Queue appends scripted replies for subsequent /api/input calls. When the
// queue runs dry the server echoes the start snapshot.
func (s *Server) Queue(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// FailStarts makes the next n /api/start calls answer 503.
func (s *Server) FailStarts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startFail = n
}

// AddImage registers an image body under a path such as "/images/zones/forest.png".
func (s *Server) AddImage(path string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[path] = body
}

// Inputs returns every /api/input body received so far.
func (s *Server) Inputs() []api.InputRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.InputRequest, len(s.inputs))
	copy(out, s.inputs)
	return out
}

// Hits returns how many times a path was requested.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	fail := s.startFail > 0
	if fail {
		s.startFail--
	}
	resp := api.StartResponse{SessionID: s.sessionID, State: s.start}
	s.mu.Unlock()

	if fail {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req api.InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, api.InputResponse{Error: "Invalid request"})
		return
	}

	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.inputs = append(s.inputs, req)
	if req.SessionID != s.sessionID {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, api.InputResponse{Error: "Invalid session"})
		return
	}
	var next Reply
	if len(s.replies) > 0 {
		next = s.replies[0]
		s.replies = s.replies[1:]
	} else {
		st := s.start
		next = Reply{State: &st}
	}
	s.mu.Unlock()

	status := next.Status
	if status == 0 {
		status = http.StatusOK
		if next.Error != "" {
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, api.InputResponse{State: next.State, Error: next.Error})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, ok := s.images[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if strings.HasSuffix(r.URL.Path, ".png") {
		w.Header().Set("Content-Type", "image/png")
	}
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
