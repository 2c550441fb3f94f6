package census

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/census/pkg/census/observability"
	"github.com/randalmurphal/census/pkg/census/slots"
)

// Inventory registers values and keeps track of the ones still alive.
//
// The inventory never owns what it lists: its slot table holds weak
// pointers to the shared records, and records only hold a weak pointer
// back. An Inventory must not be copied after first use.
type Inventory[T any] struct {
	name            string
	slots           *slots.Table[weak.Pointer[record[T]]]
	alive           atomic.Int64
	compactionRatio int
	teardown        func(T)

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	// changed is closed and replaced on every birth or death while
	// someone is waiting.
	mu      sync.Mutex
	changed chan struct{}
	waiters atomic.Int32
}

// New creates an empty inventory.
func New[T any](opts ...Option) *Inventory[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = fmt.Sprintf("inventory-%s", uuid.New().String()[:8])
	}

	inv := &Inventory[T]{
		name:            o.name,
		slots:           slots.New[weak.Pointer[record[T]]](),
		compactionRatio: o.compactionRatio,
		logger:          observability.EnrichLogger(o.logger, o.name),
		metrics:         o.metrics,
		spans:           observability.NoopSpanManager{},
		changed:         make(chan struct{}),
	}
	if o.tracing {
		inv.spans = observability.NewSpanManager()
	}
	if o.teardown != nil {
		fn, ok := o.teardown.(func(T))
		if !ok {
			panic(fmt.Sprintf("census: teardown %T does not accept the inventory value type", o.teardown))
		}
		inv.teardown = fn
	}
	return inv
}

// Name returns the inventory name.
func (inv *Inventory[T]) Name() string {
	return inv.name
}

// Len returns the number of live values.
func (inv *Inventory[T]) Len() int {
	return int(inv.alive.Load())
}

// Track starts tracking value and returns the first handle to it.
func (inv *Inventory[T]) Track(value T) *TrackedObject[T] {
	inv.maybeCompact()

	rec := &record[T]{
		value:    value,
		refs:     new(atomic.Int64),
		owner:    weak.Make(inv),
		teardown: inv.teardown,
	}
	rec.refs.Store(1)
	inv.slots.Insert(func(id uint64) weak.Pointer[record[T]] {
		rec.slot = id
		return weak.Make(rec)
	})
	runtime.AddCleanup(rec, reclaim[T], leakTicket[T]{
		refs:  rec.refs,
		slot:  rec.slot,
		owner: rec.owner,
	})

	alive := int(inv.alive.Add(1))
	observability.LogTrack(inv.logger, rec.slot, alive)
	inv.metrics.RecordTrack(context.Background(), inv.name)
	inv.notify()

	return &TrackedObject[T]{rec: rec}
}

// List takes a snapshot of the living values.
//
// Each returned handle holds its own reference: a listed value stays alive
// until the returned handle is released, even if every other handle to it
// is released first. The order is not specified.
//
// Values registered after the call started may or may not appear; values
// whose last handle was released before the call started never do.
func (inv *Inventory[T]) List() []*TrackedObject[T] {
	start := time.Now()
	inv.maybeCompact()

	entries := inv.slots.Snapshot()
	out := make([]*TrackedObject[T], 0, len(entries))
	dead := 0
	for _, e := range entries {
		rec := e.Value.Value()
		if rec == nil || !rec.retain() {
			dead++
			continue
		}
		out = append(out, &TrackedObject[T]{rec: rec})
	}
	if dead > 0 {
		inv.Compact(context.Background())
	}

	inv.metrics.RecordList(context.Background(), inv.name, len(out), time.Since(start))
	return out
}

// Values returns a snapshot of the living values.
// Unlike List, it holds no references once it returns.
func (inv *Inventory[T]) Values() []T {
	handles := inv.List()
	values := make([]T, len(handles))
	for i, h := range handles {
		values[i] = h.Value()
		h.Release()
	}
	return values
}

// Compact removes slots whose value is no longer alive and returns how
// many were removed. Listings never return dead values whether or not
// compaction ran; this only reclaims table space.
//
// With tracing enabled, a census.compaction event is added to the span in
// ctx. Sweeps that Track and List run on their own have no caller span and
// are only logged and counted.
func (inv *Inventory[T]) Compact(ctx context.Context) int {
	if ctx == nil {
		ctx = context.Background()
	}
	removed := inv.slots.Sweep(isDead[T])
	if removed == 0 {
		return 0
	}
	observability.LogCompaction(inv.logger, removed, inv.slots.Len())
	inv.metrics.RecordCompaction(ctx, inv.name, removed)
	inv.spans.AddSpanEvent(ctx, "census.compaction", attribute.Int("removed", removed))
	return removed
}

func (inv *Inventory[T]) maybeCompact() {
	if inv.compactionRatio == 0 {
		return
	}
	n := inv.slots.Len()
	if n > 0 && int(inv.alive.Load())*inv.compactionRatio <= n {
		inv.Compact(context.Background())
	}
}

// forget removes a slot after its record died. It runs exactly once per
// record, from whichever path observed the death.
func (inv *Inventory[T]) forget(slot uint64, leakedRefs int64) {
	inv.slots.Remove(slot)
	alive := int(inv.alive.Add(-1))
	if leakedRefs > 0 {
		observability.LogLeak(inv.logger, slot, leakedRefs)
	} else {
		observability.LogRelease(inv.logger, slot, alive)
	}
	inv.metrics.RecordRelease(context.Background(), inv.name, leakedRefs > 0)
	inv.notify()
}

func isDead[T any](p weak.Pointer[record[T]]) bool {
	rec := p.Value()
	return rec == nil || rec.refs.Load() <= 0
}
