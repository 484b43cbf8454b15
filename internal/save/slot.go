package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chosenoffset.com/mhaclient/internal/api"
)

// Key is the storage key of the resume slot.
const Key = "mha_save"

// CurrentVersion is the record format written by this client. Version 0 is
// the unversioned format written by the browser client.
const CurrentVersion = 1

var (
	// ErrNoSave means the slot is empty.
	ErrNoSave = errors.New("no save found")
	// ErrCorrupt means the slot holds bytes that do not decode as a record.
	ErrCorrupt = errors.New("save corrupted")
	// ErrUnusable means the record decodes but this client cannot resume it,
	// for example one written by a newer client.
	ErrUnusable = errors.New("save cannot be resumed")
)

// Record is the persisted resume point.
type Record struct {
	Version   int          `json:"version"`
	SessionID string       `json:"sessionId"`
	GameState api.Snapshot `json:"gameState"`
	Zone      int          `json:"zone"`
	Timestamp int64        `json:"timestamp"`
}

// Slot reads and writes the single resume record in a Store.
type Slot struct {
	store Store
}

// NewSlot wraps store.
func NewSlot(store Store) *Slot {
	return &Slot{store: store}
}

// Load returns the saved record. It returns ErrNoSave when the slot is empty,
// an error wrapping ErrCorrupt when the stored bytes do not decode and one
// wrapping ErrUnusable for a well-formed record it cannot resume.
// Load never deletes anything; callers decide whether to Clear.
func (s *Slot) Load(ctx context.Context) (*Record, error) {
	data, err := s.store.Get(ctx, Key)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return decodeRecord(data)
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	switch {
	case rec.Version > CurrentVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrUnusable, rec.Version)
	case rec.Version < 0:
		return nil, fmt.Errorf("%w: negative version %d", ErrUnusable, rec.Version)
	case rec.Version == 0:
		// Browser records carry no version; the layout is otherwise the same.
		rec.Version = CurrentVersion
	}
	if rec.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrUnusable)
	}
	return &rec, nil
}

// Write replaces the slot with rec, stamping the current version.
func (s *Slot) Write(ctx context.Context, rec Record) error {
	rec.Version = CurrentVersion
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	if err := s.store.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

// Clear empties the slot.
func (s *Slot) Clear(ctx context.Context) error {
	if err := s.store.Remove(ctx, Key); err != nil {
		return fmt.Errorf("clear save: %w", err)
	}
	return nil
}
