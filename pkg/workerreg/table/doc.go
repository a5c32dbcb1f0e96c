// Package table provides a concurrent map tuned for one writer and many readers.
//
// A Table publishes an immutable snapshot of its entries through an atomic
// pointer. Readers load the current snapshot and never take a lock, so a
// lookup cannot be delayed by a write in progress. Writers copy the snapshot,
// apply their change and publish the copy; writers are serialized by a mutex
// that readers never touch.
//
// # Basic Usage
//
//	t := table.New[string, *kv.Worker]()
//	t.Store("cart:42", worker)
//
//	w, ok := t.Get("cart:42")
//	if ok {
//	    // use w
//	}
//
// # Cost Model
//
// Reads are O(1) and wait-free. Every write copies the whole map, which is
// O(n) in the number of entries. This suits name tables that are read on
// every request and written only when an entry is born or dies.
//
// # Conditional Writes
//
// LoadOrStore and CompareAndDelete make claim/release patterns atomic:
//
//	if _, loaded := owners.LoadOrStore(id, me); loaded {
//	    return ErrTaken
//	}
//	defer owners.CompareAndDelete(id, me)
package table
