// Package api holds the wire types exchanged with the game server and the
// HTTP client that talks to it.
package api

import "encoding/json"

// Snapshot is the complete server-authoritative game state delivered on every
// request/response cycle. A new snapshot replaces the previous one wholesale.
type Snapshot struct {
	GameState    string     `json:"game_state"`
	Theme        string     `json:"theme,omitempty"`
	Zone         int        `json:"zone"`
	InCombat     bool       `json:"in_combat"`
	Enemy        *Enemy     `json:"enemy,omitempty"`
	Character    *Character `json:"character,omitempty"`
	Messages     []Message  `json:"messages"`
	ActiveCount  *int       `json:"active_count,omitempty"`
	TotalCount   *int       `json:"total_count,omitempty"`
	PendingInput string     `json:"pending_input,omitempty"`
}

// Message is one line of narrative text.
type Message struct {
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}

// Style returns the message type, defaulting to "normal".
func (m Message) Style() string {
	if m.Type == "" {
		return MessageNormal
	}
	return m.Type
}

// Message type tags the client treats specially.
const (
	MessageNormal  = "normal"
	MessageWarning = "warning"
)

// Character is the player's selected hero.
type Character struct {
	Name      string `json:"name"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"max_hp"`
	Energy    int    `json:"energy"`
	MaxEnergy int    `json:"max_energy"`
	// Inventory is only ever counted, so entries are kept undecoded.
	Inventory []json.RawMessage `json:"inventory,omitempty"`
}

// Enemy is the opponent of the current fight.
type Enemy struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

// StartResponse is the body returned by POST /api/start.
type StartResponse struct {
	SessionID string   `json:"session_id"`
	State     Snapshot `json:"state"`
}

// InputRequest is the body sent to POST /api/input.
type InputRequest struct {
	SessionID string `json:"session_id"`
	Input     string `json:"input"`
}

// InputResponse is the body returned by POST /api/input. Exactly one of
// State or Error is set.
type InputResponse struct {
	State *Snapshot `json:"state,omitempty"`
	Error string    `json:"error,omitempty"`
}

// Well-known game_state tags.
const (
	StateIntro       = "intro"
	StateReady       = "ready"
	StateCharSelect  = "char_select"
	StateNavigation  = "navigation"
	StateCombat      = "combat"
	StateBossWarning = "boss_warning"
	StateGameOver    = "game_over"
	StateVictory     = "victory"
)

// PendingContinue marks a snapshot that accepts a bare Enter.
const PendingContinue = "continue"
