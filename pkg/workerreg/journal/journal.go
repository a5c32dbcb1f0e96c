// Package journal records registry lifecycle transitions for auditing.
//
// A journal is write-mostly: the registry appends one entry per spawn,
// failed spawn and eviction. Entries are never replayed into a registry;
// a restarted registry always starts empty.
package journal

import (
	"context"
	"errors"
	"time"
)

// Event is the kind of lifecycle transition.
type Event string

// Lifecycle events.
const (
	EventSpawned     Event = "spawned"
	EventSpawnFailed Event = "spawn_failed"
	EventEvicted     Event = "evicted"
)

// Entry is one recorded transition.
type Entry struct {
	// Sequence is assigned by the store, increasing per store.
	Sequence int64
	Identity string
	Name     string
	// WorkerID is empty for EventSpawnFailed.
	WorkerID string
	Event    Event
	// Reason holds the exit reason or spawn error text.
	Reason    string
	Timestamp time.Time
}

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records an entry. Sequence is ignored and assigned by the store;
	// a zero Timestamp is replaced with the current time.
	Append(ctx context.Context, e Entry) error

	// List returns the entries for a name in a registry, oldest first.
	// An empty name returns every entry of the registry.
	List(ctx context.Context, identity, name string) ([]Entry, error)

	// Close releases any resources (connections, files).
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("journal store closed")

// Open selects a store from a settings value: "" returns a nil Store,
// "memory" an in-process store, and anything else a SQLite file path.
func Open(target string) (Store, error) {
	switch target {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		s, err := NewSQLiteStore(target)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
