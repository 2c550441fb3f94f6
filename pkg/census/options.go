package census

import (
	"log/slog"

	"github.com/randalmurphal/census/pkg/census/observability"
)

// defaultCompactionRatio sweeps the slot table once live values make up
// half of it or less.
const defaultCompactionRatio = 2

// options holds inventory configuration.
type options struct {
	name            string
	logger          *slog.Logger
	metrics         observability.MetricsRecorder
	tracing         bool
	compactionRatio int
	teardown        any
}

func defaultOptions() options {
	return options{
		metrics:         observability.NoopMetrics{},
		compactionRatio: defaultCompactionRatio,
	}
}

// Option configures an Inventory.
type Option func(*options)

// WithName sets the name used in logs, metrics, and spans.
// Default: "inventory-" followed by eight random hex digits.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger enables structured logging of registrations, releases,
// leaks, compactions, and waits.
// Default: nil (no logging)
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
//
// Example:
//
//	inv := census.New[int](census.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans around WaitUntil and a
// census.compaction event on the caller's span when Compact is called with
// a traced context.
// Default: false
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracing = enabled
	}
}

// WithCompactionRatio sets when dead slots are swept eagerly: once
// live*ratio <= slots. A ratio of 0 disables the eager sweep; dead slots
// found while listing are still removed.
// Default: 2
func WithCompactionRatio(ratio int) Option {
	return func(o *options) {
		if ratio >= 0 {
			o.compactionRatio = ratio
		}
	}
}

// WithTeardown registers a function run on a value when the last handle to
// it is released. It is not run for values reclaimed by the garbage
// collector without a release.
//
// The function's parameter type must match the inventory's value type;
// New panics otherwise.
//
// Example:
//
//	inv := census.New[*os.File](census.WithTeardown(func(f *os.File) { f.Close() }))
func WithTeardown[T any](fn func(T)) Option {
	return func(o *options) {
		if fn != nil {
			o.teardown = fn
		}
	}
}
