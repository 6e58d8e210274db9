package observability

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestEnrichLogger(t *testing.T) {
	logger, buf := captureLogger()
	enriched := EnrichLogger(logger, "user.create", "abc-1", "http")
	enriched.Info("hello")

	out := buf.String()
	for _, want := range []string{`"event_type":"user.create"`, `"correlation_id":"abc-1"`, `"source":"http"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestLogHelpers(t *testing.T) {
	logger, buf := captureLogger()

	LogDispatchStart(logger, "user.create", "c1")
	LogDispatchComplete(logger, "user.create", "c1", "success", 12.5)
	LogDispatchError(logger, "user.create", "c1", "handler_error", "declined", false)
	LogDuplicate(logger, "user.create", "c1")

	out := buf.String()
	for _, want := range []string{
		"dispatch starting",
		"dispatch completed",
		"dispatch failed",
		"duplicate dispatch suppressed",
		`"retryable":false`,
		`"status":"success"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestLogHelpersNilLogger(t *testing.T) {
	// Must be safe without a logger.
	if got := EnrichLogger(nil, "a", "b", "c"); got != nil {
		t.Errorf("EnrichLogger(nil) = %v", got)
	}
	LogDispatchStart(nil, "a", "b")
	LogDispatchComplete(nil, "a", "b", "success", 1)
	LogDispatchError(nil, "a", "b", "k", "m", true)
	LogDuplicate(nil, "a", "b")
}

func TestTimedOperation(t *testing.T) {
	elapsed := TimedOperation()
	if ms := elapsed(); ms < 0 {
		t.Errorf("elapsed = %v", ms)
	}
}
