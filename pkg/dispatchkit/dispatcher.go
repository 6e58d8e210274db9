package dispatchkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit/idempotency"
	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit/observability"
)

// Dispatcher routes envelopes to handlers with idempotency and error
// normalization. It is safe for concurrent use by any number of adapter
// goroutines; dispatches with distinct correlation ids run fully in
// parallel, dispatches sharing one are serialized by an in-flight claim.
//
// The dispatcher exclusively owns its Registry and idempotency Store
// references; handlers never touch either.
type Dispatcher struct {
	registry   *Registry
	store      idempotency.Store
	claims     *claimTable
	fallback   Handler
	observer   Observer
	logger     *slog.Logger
	middleware []Middleware
	sem        *semaphore.Weighted
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStore sets the idempotency store. Default: in-memory.
func WithStore(store idempotency.Store) Option {
	return func(d *Dispatcher) {
		d.store = store
	}
}

// WithFallback sets a catch-all handler invoked for event types with no
// registry binding, for deployments that permit passthrough of unregistered
// types. Without a fallback such dispatches fail with an unknown-event-type
// outcome.
func WithFallback(h Handler) Option {
	return func(d *Dispatcher) {
		d.fallback = h
	}
}

// WithObserver sets the observability sink receiving one record per
// dispatch.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// WithLogger sets the structured logger. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMiddleware wraps every handler invocation, first middleware outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(d *Dispatcher) {
		d.middleware = append(d.middleware, mw...)
	}
}

// WithConcurrencyLimit bounds the number of concurrently executing handlers.
// Zero or negative means unlimited. The bound covers handler execution only,
// never the claim wait, so deduplication stays responsive under load.
func WithConcurrencyLimit(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sem = semaphore.NewWeighted(n)
		}
	}
}

// NewDispatcher creates a dispatcher over a wired registry. The registry is
// sealed: adapters are about to consume it, so the wiring phase is over.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		claims:   newClaimTable(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = idempotency.NewMemoryStore()
	}
	registry.Seal()
	return d
}

// Dispatch executes the envelope's operation at most once per correlation
// id. It never panics and never returns an error: every path, including
// handler panics and store outages, is normalized into an Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, env *Envelope) Outcome {
	if env == nil {
		env = &Envelope{}
	}
	start := time.Now()
	ctx, span := observability.StartDispatchSpan(ctx, env.EventType, env.CorrelationID)

	out := d.dispatch(ctx, env, start)
	out.Elapsed = time.Since(start)

	observability.EndSpanWithError(span, out.Err())
	d.observe(ctx, env, out)
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, env *Envelope, start time.Time) Outcome {
	if err := env.Validate(); err != nil {
		return FailErr(err)
	}

	observability.LogDispatchStart(d.logger, env.EventType, env.CorrelationID)

	c, winner := d.claims.acquire(env.CorrelationID)
	if !winner {
		// Lost the race to a concurrent dispatch for the same correlation
		// id. Wait for the owner's finalization, not for a dispatcher-wide
		// lock; unrelated correlation ids stay fully concurrent.
		original, ok := d.claims.wait(ctx, c)
		if !ok {
			return Fail(KindTimeout, fmt.Sprintf(
				"deadline expired waiting for in-flight dispatch of %s", env.CorrelationID))
		}
		return Duplicate(original)
	}

	// This caller owns the correlation id until finalize runs. Everything
	// below must finalize exactly once, or waiters hang.
	rec, err := d.store.Get(ctx, env.CorrelationID)
	switch {
	case err == nil:
		original := recordOutcome(rec)
		d.finalize(ctx, env, c, original, false)
		return Duplicate(original)
	case !errors.Is(err, idempotency.ErrNotFound):
		out := FailErr(Unavailable("idempotency store lookup failed", err))
		d.finalize(ctx, env, c, out, false)
		return out
	}

	handler, rerr := d.registry.Resolve(env.EventType)
	if rerr != nil {
		if d.fallback == nil {
			out := FailErr(rerr)
			d.finalize(ctx, env, c, out, true)
			return out
		}
		handler = d.fallback
	}

	if d.sem != nil {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			out := FailErr(err)
			d.finalize(ctx, env, c, out, false)
			return out
		}
		defer d.sem.Release(1)
	}

	out := d.invoke(ctx, handler, env)
	out.Elapsed = time.Since(start)
	d.finalize(ctx, env, c, out, true)
	return out
}

// invoke runs the handler and normalizes its result, error, or panic into an
// Outcome. Nothing a handler does escapes the dispatch boundary.
func (d *Dispatcher) invoke(ctx context.Context, handler Handler, env *Envelope) (out Outcome) {
	ctx, span := observability.StartHandlerSpan(ctx, env.EventType)
	defer func() {
		if r := recover(); r != nil {
			out = Fail(KindHandler, fmt.Sprintf("handler panic: %v", r))
			observability.EndSpanWithError(span, out.Err())
		}
	}()

	if len(d.middleware) > 0 {
		handler = Chain(handler, d.middleware...)
	}

	result, err := handler.Handle(ctx, env)
	if err != nil {
		out = FailErr(err)
	} else {
		out = Success(result)
	}
	observability.EndSpanWithError(span, out.Err())
	return out
}

// finalize persists the record (when the outcome warrants one), then wakes
// waiters. Persist-before-wake matters: a fresh claim acquired after the
// wake must find the record in the store.
func (d *Dispatcher) finalize(ctx context.Context, env *Envelope, c *claim, out Outcome, persist bool) {
	if persist {
		if err := d.store.Put(ctx, outcomeRecord(env, out)); err != nil && d.logger != nil {
			// The dispatch itself succeeded or failed on its own terms; a
			// record write failure only weakens dedupe across restarts.
			d.logger.Warn("idempotency record write failed",
				slog.String("correlation_id", env.CorrelationID),
				slog.String("error", err.Error()),
			)
		}
	}
	d.claims.finalize(env.CorrelationID, c, out)
}

// observe emits the per-dispatch record. Observer misbehavior is contained
// here.
func (d *Dispatcher) observe(ctx context.Context, env *Envelope, out Outcome) {
	if d.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && d.logger != nil {
			d.logger.Warn("observer panicked",
				slog.String("correlation_id", env.CorrelationID),
				slog.Any("panic", r),
			)
		}
	}()
	d.observer.Record(ctx, env, out)
}

// Registry returns the sealed registry, for diagnostic surfaces.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// InFlight returns the number of correlation ids currently being dispatched.
func (d *Dispatcher) InFlight() int {
	return d.claims.size()
}

// outcomeRecord converts an Outcome into its persisted form.
func outcomeRecord(env *Envelope, out Outcome) *idempotency.Record {
	rec := &idempotency.Record{
		CorrelationID: env.CorrelationID,
		EventType:     env.EventType,
		Status:        string(out.Status),
		Kind:          string(out.Kind),
		Message:       out.Message,
		Retryable:     out.Retryable,
		CreatedAt:     env.Timestamp,
		FinalizedAt:   time.Now(),
	}
	if out.Result != nil {
		// Best effort - an unserializable result only loses replay fidelity.
		rec.Result, _ = json.Marshal(out.Result)
	}
	return rec
}

// recordOutcome reconstructs the finalized Outcome from its persisted form.
func recordOutcome(rec *idempotency.Record) Outcome {
	out := Outcome{
		Status:    Status(rec.Status),
		Kind:      ErrorKind(rec.Kind),
		Message:   rec.Message,
		Retryable: rec.Retryable,
	}
	if len(rec.Result) > 0 {
		_ = json.Unmarshal(rec.Result, &out.Result)
	}
	return out
}
