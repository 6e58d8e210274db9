package observability

import (
	"context"
	"time"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled.
type NoopMetrics struct{}

// RecordDispatch does nothing.
func (NoopMetrics) RecordDispatch(_ context.Context, _, _ string, _ time.Duration) {}

// RecordFailure does nothing.
func (NoopMetrics) RecordFailure(_ context.Context, _, _ string, _ bool) {}

// RecordDuplicate does nothing.
func (NoopMetrics) RecordDuplicate(_ context.Context, _ string) {}
