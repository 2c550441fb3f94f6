package census

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
	"weak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/census/pkg/census/config"
	"github.com/randalmurphal/census/pkg/census/observability"
)

// deadRecord returns a record whose count already reached zero.
func deadRecord[T any](v T) *record[T] {
	return &record[T]{value: v, refs: new(atomic.Int64)}
}

// insertRecord places rec in the slot table directly, bypassing Track.
func insertRecord[T any](inv *Inventory[T], rec *record[T]) {
	inv.slots.Insert(func(id uint64) weak.Pointer[record[T]] {
		rec.slot = id
		return weak.Make(rec)
	})
}

// setupTracing installs an in-memory exporter as the global tracer provider
// for the duration of the test.
func setupTracing(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func TestRetainRefusesDeadRecord(t *testing.T) {
	rec := deadRecord(1)
	assert.False(t, rec.retain())
	assert.Equal(t, int64(0), rec.refs.Load())

	rec.refs.Store(2)
	assert.True(t, rec.retain())
	assert.Equal(t, int64(3), rec.refs.Load())
}

func TestListSkipsAndSweepsDeadSlots(t *testing.T) {
	inv := New[int](WithCompactionRatio(0))

	dead := deadRecord(9)
	insertRecord(inv, dead)
	live := inv.Track(1)
	defer live.Release()

	assert.Equal(t, 2, inv.slots.Len())
	assert.Equal(t, []int{1}, inv.Values())
	assert.Equal(t, 1, inv.slots.Len(), "dead slot found while listing is swept")

	runtime.KeepAlive(dead)
}

func TestTrackCompactsWhenMostlyDead(t *testing.T) {
	inv := New[int]()
	live := inv.Track(100)
	defer live.Release()

	var dead []*record[int]
	for i := range 3 {
		rec := deadRecord(i)
		dead = append(dead, rec)
		insertRecord(inv, rec)
	}
	require.Equal(t, 4, inv.slots.Len())

	// alive*2 <= slots: the next Track sweeps first.
	other := inv.Track(200)
	defer other.Release()

	assert.Equal(t, 2, inv.slots.Len())
	runtime.KeepAlive(dead)
}

func TestCompactionRatioZeroDisablesEagerSweep(t *testing.T) {
	inv := New[int](WithCompactionRatio(0))

	dead := deadRecord(0)
	insertRecord(inv, dead)
	h := inv.Track(1)
	defer h.Release()

	assert.Equal(t, 2, inv.slots.Len())
	assert.Equal(t, 1, inv.Compact(context.Background()))
	assert.Equal(t, 1, inv.slots.Len())
	runtime.KeepAlive(dead)
}

func TestReleaseRemovesSlotImmediately(t *testing.T) {
	inv := New[string]()
	h := inv.Track("x")
	require.Equal(t, 1, inv.slots.Len())

	h.Release()
	assert.Equal(t, 0, inv.slots.Len())
}

func TestLeakedHandlesAreReclaimed(t *testing.T) {
	m := &leakMetrics{}
	inv := New[int](WithMetrics(m))

	func() {
		inv.Track(1)
		inv.Track(2).Clone()
	}()
	keep := inv.Track(3)
	defer keep.Release()

	require.Eventually(t, func() bool {
		runtime.GC()
		return inv.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, []int{3}, inv.Values())
	assert.Equal(t, int64(2), m.leaked.Load())
}

func TestReclaimAfterReleaseIsNoop(t *testing.T) {
	inv := New[int]()
	h := inv.Track(1)
	ticket := leakTicket[int]{refs: h.rec.refs, slot: h.rec.slot, owner: h.rec.owner}

	h.Release()
	require.Equal(t, 0, inv.Len())

	reclaim(ticket)
	assert.Equal(t, 0, inv.Len(), "death is recorded once")
}

func TestInventoryCollectedBeforeHandles(t *testing.T) {
	var h *TrackedObject[string]
	var owner weak.Pointer[Inventory[string]]
	func() {
		inv := New[string]()
		h = inv.Track("orphan")
		owner = weak.Make(inv)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return owner.Value() == nil
	}, 5*time.Second, 10*time.Millisecond)

	mapped := h.Map(func(s string) string { return s + "!" })
	assert.Equal(t, "orphan!", mapped.Value())
	assert.Equal(t, uint64(0), mapped.Slot(), "detached handle has no slot")

	c := h.Clone()
	assert.NotPanics(t, func() {
		assert.True(t, h.Release())
		assert.True(t, c.Release())
		assert.True(t, mapped.Release())
	})
}

func TestWaitSpan(t *testing.T) {
	exporter := setupTracing(t)

	inv := New[int](WithName("traced"), WithTracing(true))
	require.NoError(t, inv.WaitUntilEmpty(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "census.wait", spans[0].Name)
}

func TestCompactionEventOnCallerSpan(t *testing.T) {
	exporter := setupTracing(t)

	inv := New[int](WithName("traced"), WithTracing(true), WithCompactionRatio(0))
	dead := deadRecord(0)
	insertRecord(inv, dead)
	defer runtime.KeepAlive(dead)

	ctx, span := otel.Tracer("test").Start(context.Background(), "maintenance")
	assert.Equal(t, 1, inv.Compact(ctx))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	event := spans[0].Events[0]
	assert.Equal(t, "census.compaction", event.Name)
	require.Len(t, event.Attributes, 1)
	assert.Equal(t, "removed", string(event.Attributes[0].Key))
	assert.Equal(t, int64(1), event.Attributes[0].Value.AsInt64())
}

func TestImplicitCompactionHasNoSpan(t *testing.T) {
	exporter := setupTracing(t)

	inv := New[int](WithTracing(true), WithCompactionRatio(0))
	dead := deadRecord(0)
	insertRecord(inv, dead)
	defer runtime.KeepAlive(dead)

	assert.Empty(t, inv.Values())
	assert.Equal(t, 0, inv.slots.Len(), "listing swept the dead slot")
	assert.Empty(t, exporter.GetSpans())
}

func TestTeardownPanicRemovesSlot(t *testing.T) {
	inv := New[int](WithTeardown(func(int) { panic("boom") }))
	h := inv.Track(1)
	require.Equal(t, 1, inv.slots.Len())

	assert.Panics(t, func() { h.Release() })
	assert.Equal(t, 0, inv.slots.Len())
	assert.Equal(t, 0, inv.Len())
	assert.Equal(t, int64(0), h.rec.refs.Load())
}

type leakMetrics struct {
	leaked atomic.Int64
}

func (m *leakMetrics) RecordTrack(context.Context, string) {}

func (m *leakMetrics) RecordRelease(_ context.Context, _ string, leaked bool) {
	if leaked {
		m.leaked.Add(1)
	}
}

func (m *leakMetrics) RecordList(context.Context, string, int, time.Duration) {}

func (m *leakMetrics) RecordCompaction(context.Context, string, int) {}

func TestFromConfigAppliesSettings(t *testing.T) {
	opts, err := FromConfig(config.New(map[string]any{
		"compaction_ratio": 3,
		"tracing":          true,
	}))
	require.NoError(t, err)

	inv := New[int](opts...)
	assert.Equal(t, 3, inv.compactionRatio)
	assert.IsType(t, observability.NewSpanManager(), inv.spans)
}
