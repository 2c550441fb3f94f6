package census

import (
	"fmt"
	"sync/atomic"
	"weak"
)

// record is the state shared by every clone of a handle.
// Exactly one record exists per Track call.
type record[T any] struct {
	value T
	// refs lives in its own allocation so the leak cleanup can read it
	// without keeping the record reachable.
	refs     *atomic.Int64
	slot     uint64
	owner    weak.Pointer[Inventory[T]]
	teardown func(T)
}

// retain adds a reference unless the record is already dead.
// A count that reached zero never comes back.
func (r *record[T]) retain() bool {
	for {
		n := r.refs.Load()
		if n <= 0 {
			return false
		}
		if r.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops a reference. Only the caller whose decrement takes the
// count from one to zero tears the record down.
func (r *record[T]) release() {
	if r.refs.Add(-1) != 0 {
		return
	}
	// The value leaves its inventory even if teardown panics.
	defer func() {
		if inv := r.owner.Value(); inv != nil {
			inv.forget(r.slot, 0)
		}
	}()
	if r.teardown != nil {
		r.teardown(r.value)
	}
}

// leakTicket carries what the cleanup of a collected record needs,
// without referencing the record itself.
type leakTicket[T any] struct {
	refs  *atomic.Int64
	slot  uint64
	owner weak.Pointer[Inventory[T]]
}

// reclaim runs once a record has been garbage collected. A positive count
// at that point means handles were dropped without Release.
func reclaim[T any](t leakTicket[T]) {
	n := t.refs.Swap(0)
	if n <= 0 {
		return
	}
	if inv := t.owner.Value(); inv != nil {
		inv.forget(t.slot, n)
	}
}

// TrackedObject is a handle to a tracked value.
//
// Cloning a handle never copies the value, only the reference to it. The
// value cannot be replaced through a handle; if T is itself mutable,
// synchronizing access to it is the caller's concern.
type TrackedObject[T any] struct {
	rec      *record[T]
	released atomic.Bool
}

// Value returns the tracked value.
func (h *TrackedObject[T]) Value() T {
	return h.rec.value
}

// Slot returns the inventory slot id of the value, or 0 for a handle
// detached from any inventory.
func (h *TrackedObject[T]) Slot() uint64 {
	return h.rec.slot
}

// Clone returns a new handle to the same value.
// Cloning a released handle panics.
func (h *TrackedObject[T]) Clone() *TrackedObject[T] {
	if h.released.Load() {
		panic("census: clone of released handle")
	}
	h.rec.refs.Add(1)
	return &TrackedObject[T]{rec: h.rec}
}

// Release drops this handle's reference. It reports whether this call
// released it; releasing a handle twice is a no-op.
//
// When the last reference of a value goes, the teardown function runs and
// the value leaves its inventory, if the inventory still exists. A panic
// in the teardown function propagates to the caller after the value has
// left the inventory.
func (h *TrackedObject[T]) Release() bool {
	if !h.released.CompareAndSwap(false, true) {
		return false
	}
	h.rec.release()
	return true
}

// Released reports whether Release was called on this handle.
func (h *TrackedObject[T]) Released() bool {
	return h.released.Load()
}

// Map tracks f applied to the value in the same inventory.
//
// If the inventory has already been garbage collected, the result is a
// detached handle: it behaves like any other handle, but nothing lists it.
func (h *TrackedObject[T]) Map(f func(T) T) *TrackedObject[T] {
	v := f(h.rec.value)
	if inv := h.rec.owner.Value(); inv != nil {
		return inv.Track(v)
	}
	rec := &record[T]{
		value:    v,
		refs:     new(atomic.Int64),
		teardown: h.rec.teardown,
	}
	rec.refs.Store(1)
	return &TrackedObject[T]{rec: rec}
}

// String implements fmt.Stringer.
func (h *TrackedObject[T]) String() string {
	return fmt.Sprintf("Tracked(%v)", h.rec.value)
}
