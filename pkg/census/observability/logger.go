// Package observability provides logging, metrics, and tracing hooks
// for census inventories.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the inventory name to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "sessions")
//	enriched.Info("doing work") // includes inventory
func EnrichLogger(logger *slog.Logger, inventory string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("inventory", inventory))
}

// LogTrack logs the registration of a new value.
func LogTrack(logger *slog.Logger, slot uint64, alive int) {
	if logger == nil {
		return
	}
	logger.Debug("object tracked",
		slog.Uint64("slot", slot),
		slog.Int("alive", alive),
	)
}

// LogRelease logs the release of the last handle of a value.
func LogRelease(logger *slog.Logger, slot uint64, alive int) {
	if logger == nil {
		return
	}
	logger.Debug("object released",
		slog.Uint64("slot", slot),
		slog.Int("alive", alive),
	)
}

// LogLeak logs a value whose handles were collected without being released.
func LogLeak(logger *slog.Logger, slot uint64, refs int64) {
	if logger == nil {
		return
	}
	logger.Warn("tracked object collected without release",
		slog.Uint64("slot", slot),
		slog.Int64("refs", refs),
	)
}

// LogCompaction logs a sweep of dead slots.
func LogCompaction(logger *slog.Logger, removed, remaining int) {
	if logger == nil {
		return
	}
	logger.Debug("slots compacted",
		slog.Int("removed", removed),
		slog.Int("remaining", remaining),
	)
}

// LogWaitStart logs the start of a blocking wait on the alive count.
func LogWaitStart(logger *slog.Logger, alive int) {
	if logger == nil {
		return
	}
	logger.Debug("waiting on inventory",
		slog.Int("alive", alive),
	)
}

// LogWaitDone logs the end of a wait, successful or not.
func LogWaitDone(logger *slog.Logger, durationMs float64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Info("wait on inventory aborted",
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("wait on inventory satisfied",
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
