package slots

import (
	"sync"
	"sync/atomic"
)

// Entry is one slot captured by Snapshot.
type Entry[V any] struct {
	ID    uint64
	Value V
}

// Table is a thread-safe slot table.
// Ids come from a lock-free counter; the map is guarded by a sync.RWMutex.
type Table[V any] struct {
	mu      sync.RWMutex
	entries map[uint64]V
	nextID  atomic.Uint64
}

// New creates a new empty table.
func New[V any]() *Table[V] {
	return &Table[V]{
		entries: make(map[uint64]V),
	}
}

// Insert allocates a fresh slot id, builds the value for it with build,
// and stores the result. build runs before the entry is visible to readers
// and without the lock held.
func (t *Table[V]) Insert(build func(id uint64) V) uint64 {
	id := t.nextID.Add(1)
	v := build(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[id] = v
	return id
}

// Remove deletes the slot and reports whether it was present.
func (t *Table[V]) Remove(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[id]; !ok {
		return false
	}
	delete(t.entries, id)
	return true
}

// Len returns the number of occupied slots, dead or alive.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Snapshot copies all entries under the read lock.
// The order is not guaranteed.
func (t *Table[V]) Snapshot() []Entry[V] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry[V], 0, len(t.entries))
	for id, v := range t.entries {
		out = append(out, Entry[V]{ID: id, Value: v})
	}
	return out
}

// Sweep removes every entry for which dead returns true.
// dead runs with the write lock held and must not call back into t.
func (t *Table[V]) Sweep(dead func(V) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, v := range t.entries {
		if dead(v) {
			delete(t.entries, id)
			removed++
		}
	}
	return removed
}
