// Package save persists the single resume slot. A Store is a small durable
// key/value map standing in for browser local storage; Slot layers the save
// record format and its lifecycle on top.
package save

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when a key has never been written or
// was removed.
var ErrNotFound = errors.New("key not found")

// Store is a durable string key/value map. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
