package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records inventory metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTrack records a value entering the inventory.
	RecordTrack(ctx context.Context, inventory string)

	// RecordRelease records a value leaving the inventory. leaked is true
	// when the value was reclaimed by the garbage collector rather than
	// by an explicit release.
	RecordRelease(ctx context.Context, inventory string, leaked bool)

	// RecordList records a snapshot listing with its size and duration.
	RecordList(ctx context.Context, inventory string, size int, duration time.Duration)

	// RecordCompaction records dead slots swept from the table.
	RecordCompaction(ctx context.Context, inventory string, removed int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	tracked     metric.Int64Counter
	released    metric.Int64Counter
	live        metric.Int64UpDownCounter
	listSize    metric.Int64Histogram
	listLatency metric.Float64Histogram
	compacted   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("census")

	tracked, err := meter.Int64Counter("census.inventory.tracked",
		metric.WithDescription("Number of values registered"),
	)
	if err != nil {
		return nil, err
	}

	released, err := meter.Int64Counter("census.inventory.released",
		metric.WithDescription("Number of values whose last handle was released"),
	)
	if err != nil {
		return nil, err
	}

	live, err := meter.Int64UpDownCounter("census.inventory.live",
		metric.WithDescription("Number of values currently live"),
	)
	if err != nil {
		return nil, err
	}

	listSize, err := meter.Int64Histogram("census.inventory.list.size",
		metric.WithDescription("Number of handles returned per listing"),
	)
	if err != nil {
		return nil, err
	}

	listLatency, err := meter.Float64Histogram("census.inventory.list.latency_ms",
		metric.WithDescription("Listing latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	compacted, err := meter.Int64Counter("census.inventory.compacted",
		metric.WithDescription("Number of dead slots swept"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		tracked:     tracked,
		released:    released,
		live:        live,
		listSize:    listSize,
		listLatency: listLatency,
		compacted:   compacted,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordTrack(ctx context.Context, inventory string) {
	attrs := metric.WithAttributes(attribute.String("inventory", inventory))
	m.tracked.Add(ctx, 1, attrs)
	m.live.Add(ctx, 1, attrs)
}

func (m *otelMetrics) RecordRelease(ctx context.Context, inventory string, leaked bool) {
	m.released.Add(ctx, 1, metric.WithAttributes(
		attribute.String("inventory", inventory),
		attribute.Bool("leaked", leaked),
	))
	m.live.Add(ctx, -1, metric.WithAttributes(attribute.String("inventory", inventory)))
}

func (m *otelMetrics) RecordList(ctx context.Context, inventory string, size int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("inventory", inventory))
	m.listSize.Record(ctx, int64(size), attrs)
	m.listLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (m *otelMetrics) RecordCompaction(ctx context.Context, inventory string, removed int) {
	m.compacted.Add(ctx, int64(removed), metric.WithAttributes(attribute.String("inventory", inventory)))
}
