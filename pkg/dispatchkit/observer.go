package dispatchkit

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit/observability"
)

// Observer receives exactly one record per dispatch, regardless of which
// branch the dispatch took. The outcome's Elapsed field carries the dispatch
// latency. Observer failures and panics never affect the returned Outcome.
type Observer interface {
	Record(ctx context.Context, env *Envelope, out Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, env *Envelope, out Outcome)

// Record implements Observer.
func (f ObserverFunc) Record(ctx context.Context, env *Envelope, out Outcome) {
	f(ctx, env, out)
}

// Observers fans one dispatch record out to several observers.
func Observers(obs ...Observer) Observer {
	return ObserverFunc(func(ctx context.Context, env *Envelope, out Outcome) {
		for _, o := range obs {
			o.Record(ctx, env, out)
		}
	})
}

// NewLogObserver records dispatches to a structured logger.
func NewLogObserver(logger *slog.Logger) Observer {
	return ObserverFunc(func(_ context.Context, env *Envelope, out Outcome) {
		switch {
		case out.Status == StatusDuplicate:
			observability.LogDuplicate(logger, env.EventType, env.CorrelationID)
		case out.Failed():
			observability.LogDispatchError(logger, env.EventType, env.CorrelationID,
				string(out.Kind), out.Message, out.Retryable)
		default:
			observability.LogDispatchComplete(logger, env.EventType, env.CorrelationID,
				string(out.Status), float64(out.Elapsed.Milliseconds()))
		}
	})
}

// NewMetricsObserver records dispatches to OpenTelemetry metrics via the
// global meter provider.
func NewMetricsObserver() Observer {
	recorder := observability.NewMetricsRecorder()
	return ObserverFunc(func(ctx context.Context, env *Envelope, out Outcome) {
		recorder.RecordDispatch(ctx, env.EventType, string(out.Status), out.Elapsed)
		if out.Status == StatusDuplicate {
			recorder.RecordDuplicate(ctx, env.EventType)
		}
		if out.Status == StatusFailed {
			recorder.RecordFailure(ctx, env.EventType, string(out.Kind), out.Retryable)
		}
	})
}
