package dispatchkit_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

func TestObserversFanOut(t *testing.T) {
	var calls []string
	mk := func(name string) dispatchkit.Observer {
		return dispatchkit.ObserverFunc(func(context.Context, *dispatchkit.Envelope, dispatchkit.Outcome) {
			calls = append(calls, name)
		})
	}

	fan := dispatchkit.Observers(mk("log"), mk("metrics"))
	fan.Record(context.Background(), dispatchkit.NewEnvelope("x", nil), dispatchkit.Success(nil))

	assert.Equal(t, []string{"log", "metrics"}, calls)
}

func TestLogObserverBranches(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	observer := dispatchkit.NewLogObserver(logger)
	env := dispatchkit.NewEnvelope("user.create", nil, dispatchkit.WithCorrelationID("c1"))

	observer.Record(context.Background(), env, dispatchkit.Success(nil))
	observer.Record(context.Background(), env, dispatchkit.Duplicate(dispatchkit.Success(nil)))
	observer.Record(context.Background(), env, dispatchkit.Fail(dispatchkit.KindHandler, "declined"))

	out := buf.String()
	for _, want := range []string{
		"dispatch completed",
		"duplicate dispatch suppressed",
		"dispatch failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}
