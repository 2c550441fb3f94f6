/*
Package census tracks the set of living instances of a value type.

# Overview

An Inventory registers values and hands back reference-counted handles.
A value stays listed for as long as at least one clone of its handle is
unreleased. Releasing the last clone removes it from the inventory; there
is no unregister call.

# Basic Usage

	inventory := census.New[string]()

	one := inventory.Track("one")
	two := inventory.Track("two")

	// A snapshot of the living instances (no guarantee on their order).
	living := inventory.List()
	fmt.Println(len(living)) // 2

	for _, h := range living {
	    h.Release()
	}
	one.Release()

	fmt.Println(inventory.Values()) // [two]
	two.Release()

# Handles

TrackedObject is the handle. Value returns the wrapped value, Clone adds a
reference, Release drops one. Every handle, including the ones returned
by List and Clone, owns exactly one reference:

	a := inventory.Track(7)
	b := a.Clone()
	a.Release()
	fmt.Println(inventory.Len()) // 1, b still holds the value
	b.Release()
	fmt.Println(inventory.Len()) // 0

Release is idempotent per handle. Distinct clones may be cloned and
released from any goroutine; Clone and Release on the same handle must
not race with each other.

A snapshot extends the life of what it lists. Release the handles returned
by List when done with them, or use Values when only the values matter.

# Unreleased Handles

A handle that becomes unreachable without being released is not lost.
Once every handle of a value is garbage collected, the value is removed
from its inventory and a warning is logged. Explicit Release is still the
prompt path; collection only bounds the damage of a forgotten one.

# Waiting

WaitUntil blocks until the number of live values satisfies a predicate:

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := inventory.WaitUntilEmpty(ctx); err != nil {
	    return err // context.DeadlineExceeded
	}

Waiting while holding an unreleased handle of the same inventory can only
end through the context.

# Observability

Logging, metrics, and tracing are opt-in:

	inventory := census.New[*Session](
	    census.WithName("sessions"),
	    census.WithLogger(logger),
	    census.WithMetrics(observability.NewMetricsRecorder()),
	    census.WithTracing(true),
	)

Tracing wraps every WaitUntil in a census.wait span. Compact adds a
census.compaction event to the span carried by its context.

Options can also come from a YAML or JSON file. FromConfig rejects unknown
keys and values of the wrong type instead of falling back to defaults.

# Thread Safety

All Inventory methods are safe for concurrent use. Reference counting is
lock-free; the slot table is guarded by a single lock that is never held
while handles are handed out.
*/
package census
