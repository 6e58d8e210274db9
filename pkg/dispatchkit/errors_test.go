package dispatchkit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

func TestErrorKindRetryable(t *testing.T) {
	retryable := map[dispatchkit.ErrorKind]bool{
		dispatchkit.KindInvalidEnvelope:       false,
		dispatchkit.KindUnknownEventType:      false,
		dispatchkit.KindConfiguration:         false,
		dispatchkit.KindHandler:               false,
		dispatchkit.KindDependencyUnavailable: true,
		dispatchkit.KindTimeout:               true,
	}
	for kind, want := range retryable {
		if got := kind.Retryable(); got != want {
			t.Errorf("%s.Retryable() = %v, want %v", kind, got, want)
		}
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := dispatchkit.Unavailable("db down", errors.New("dial tcp"))
	wrapped := fmt.Errorf("handler context: %w", orig)

	got := dispatchkit.Classify(wrapped)
	if got != orig {
		t.Errorf("Classify did not pass through the classified error: %v", got)
	}
}

func TestClassifyContextErrors(t *testing.T) {
	for _, err := range []error{context.DeadlineExceeded, context.Canceled} {
		got := dispatchkit.Classify(err)
		if got.Kind != dispatchkit.KindTimeout || !got.Retryable {
			t.Errorf("Classify(%v) = %+v, want retryable timeout", err, got)
		}
	}
}

func TestClassifyUnknownErrorIsNonRetryable(t *testing.T) {
	got := dispatchkit.Classify(errors.New("something unexpected"))
	if got.Kind != dispatchkit.KindHandler {
		t.Errorf("Kind = %s, want %s", got.Kind, dispatchkit.KindHandler)
	}
	if got.Retryable {
		t.Error("unclassified errors must default to non-retryable")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := dispatchkit.Unavailable("gateway unreachable", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is must see through the classified wrapper")
	}
}

func TestDuplicateOutcomePreservesFields(t *testing.T) {
	original := dispatchkit.Fail(dispatchkit.KindHandler, "payment declined")
	dup := dispatchkit.Duplicate(original)

	if dup.Status != dispatchkit.StatusDuplicate {
		t.Errorf("Status = %s", dup.Status)
	}
	if dup.Kind != dispatchkit.KindHandler || dup.Message != "payment declined" {
		t.Errorf("failure fields lost: %+v", dup)
	}
	if dup.OK() {
		t.Error("duplicate of a failure must not report OK")
	}

	ok := dispatchkit.Duplicate(dispatchkit.Success(map[string]any{"id": "u-1"}))
	if !ok.OK() {
		t.Error("duplicate of a success must report OK")
	}
}
