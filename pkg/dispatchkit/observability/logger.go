// Package observability provides structured logging, metrics, and tracing
// for the dispatch core.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Observability failures never affect dispatch outcomes.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with event_type, correlation_id, and source fields.
func EnrichLogger(logger *slog.Logger, eventType, correlationID, source string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_type", eventType),
		slog.String("correlation_id", correlationID),
		slog.String("source", source),
	)
}

// LogDispatchStart logs the start of a dispatch.
func LogDispatchStart(logger *slog.Logger, eventType, correlationID string) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch starting",
		slog.String("event_type", eventType),
		slog.String("correlation_id", correlationID),
	)
}

// LogDispatchComplete logs a finished dispatch with its outcome status.
func LogDispatchComplete(logger *slog.Logger, eventType, correlationID, status string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("dispatch completed",
		slog.String("event_type", eventType),
		slog.String("correlation_id", correlationID),
		slog.String("status", status),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatchError logs a failed dispatch.
func LogDispatchError(logger *slog.Logger, eventType, correlationID, kind, message string, retryable bool) {
	if logger == nil {
		return
	}
	logger.Error("dispatch failed",
		slog.String("event_type", eventType),
		slog.String("correlation_id", correlationID),
		slog.String("kind", kind),
		slog.String("error", message),
		slog.Bool("retryable", retryable),
	)
}

// LogDuplicate logs a deduplicated dispatch.
func LogDuplicate(logger *slog.Logger, eventType, correlationID string) {
	if logger == nil {
		return
	}
	logger.Info("duplicate dispatch suppressed",
		slog.String("event_type", eventType),
		slog.String("correlation_id", correlationID),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
