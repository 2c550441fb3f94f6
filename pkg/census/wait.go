package census

import (
	"context"

	"github.com/randalmurphal/census/pkg/census/observability"
)

// WaitUntil blocks until pred holds for the number of live values, or ctx
// is done. pred is re-evaluated after every registration and release.
//
// Returns ErrNilContext for a nil ctx and ctx.Err() if ctx ends first.
func (inv *Inventory[T]) WaitUntil(ctx context.Context, pred func(alive int) bool) error {
	if ctx == nil {
		return ErrNilContext
	}

	done := observability.TimedOperation()
	alive := inv.Len()
	ctx, span := inv.spans.StartWaitSpan(ctx, inv.name, alive)
	observability.LogWaitStart(inv.logger, alive)

	err := inv.wait(ctx, pred)

	inv.spans.EndSpanWithError(span, err)
	observability.LogWaitDone(inv.logger, done(), err)
	return err
}

// WaitUntilEmpty blocks until no value is alive or ctx is done.
func (inv *Inventory[T]) WaitUntilEmpty(ctx context.Context) error {
	return inv.WaitUntil(ctx, func(alive int) bool { return alive == 0 })
}

func (inv *Inventory[T]) wait(ctx context.Context, pred func(int) bool) error {
	inv.waiters.Add(1)
	defer inv.waiters.Add(-1)

	for {
		// Grab the channel before reading the count so a change between
		// the two still wakes us.
		ch := inv.changes()
		if pred(inv.Len()) {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (inv *Inventory[T]) changes() <-chan struct{} {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.changed
}

// notify wakes every waiter. The count must be updated before calling.
func (inv *Inventory[T]) notify() {
	if inv.waiters.Load() == 0 {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	close(inv.changed)
	inv.changed = make(chan struct{})
}
