package table

import (
	"maps"
	"sync"
	"sync/atomic"
)

// Table is a copy-on-write map with lock-free reads.
// The zero value is not usable; create tables with New.
type Table[K comparable, V comparable] struct {
	mu   sync.Mutex // serializes writers only
	snap atomic.Pointer[map[K]V]
}

// New creates a new empty table.
func New[K comparable, V comparable]() *Table[K, V] {
	t := &Table[K, V]{}
	empty := make(map[K]V)
	t.snap.Store(&empty)
	return t
}

func (t *Table[K, V]) load() map[K]V {
	return *t.snap.Load()
}

// Get returns the value for a key and whether it exists.
func (t *Table[K, V]) Get(key K) (V, bool) {
	v, ok := t.load()[key]
	return v, ok
}

// Has returns true if the key exists in the table.
func (t *Table[K, V]) Has(key K) bool {
	_, ok := t.load()[key]
	return ok
}

// Len returns the number of entries in the current snapshot.
func (t *Table[K, V]) Len() int {
	return len(t.load())
}

// Range calls fn for each entry of the current snapshot until fn returns false.
// Writes made during iteration are not observed.
func (t *Table[K, V]) Range(fn func(K, V) bool) {
	for k, v := range t.load() {
		if !fn(k, v) {
			return
		}
	}
}

// Store sets the value for a key.
func (t *Table[K, V]) Store(key K, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := maps.Clone(t.load())
	next[key] = value
	t.snap.Store(&next)
}

// Delete removes a key. Deleting a missing key does not publish a new snapshot.
func (t *Table[K, V]) Delete(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.load()
	if _, ok := cur[key]; !ok {
		return
	}
	next := maps.Clone(cur)
	delete(next, key)
	t.snap.Store(&next)
}

// LoadOrStore returns the existing value for key if present.
// Otherwise it stores value and returns it. loaded reports whether the
// value was already present.
func (t *Table[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.load()
	if v, ok := cur[key]; ok {
		return v, true
	}
	next := maps.Clone(cur)
	next[key] = value
	t.snap.Store(&next)
	return value, false
}

// CompareAndDelete removes key only if it currently maps to old.
func (t *Table[K, V]) CompareAndDelete(key K, old V) (deleted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.load()
	if v, ok := cur[key]; !ok || v != old {
		return false
	}
	next := maps.Clone(cur)
	delete(next, key)
	t.snap.Store(&next)
	return true
}

// Clear removes every entry.
func (t *Table[K, V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	empty := make(map[K]V)
	t.snap.Store(&empty)
}
