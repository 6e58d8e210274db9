package dispatchkit

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler is the contract every business-logic unit implements. A handler is
// bound to exactly one event type and is stateless with respect to dispatch:
// collaborators are injected at construction, never passed per call.
//
// A nil error with a result map is a success. Failures are signalled by
// returning an error, preferably a classified *Error; the Dispatcher
// normalizes both paths into an Outcome.
type Handler interface {
	Handle(ctx context.Context, env *Envelope) (map[string]any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env *Envelope) (map[string]any, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, env *Envelope) (map[string]any, error) {
	return f(ctx, env)
}

// Typed wraps a function handling a strongly-typed payload. The envelope's
// payload map is decoded into T before the function runs; decode failures
// surface as non-retryable invalid-envelope errors.
func Typed[T any](fn func(ctx context.Context, payload T, env *Envelope) (map[string]any, error)) Handler {
	return HandlerFunc(func(ctx context.Context, env *Envelope) (map[string]any, error) {
		payload, err := DecodePayload[T](env)
		if err != nil {
			return nil, err
		}
		return fn(ctx, payload, env)
	})
}

// DecodePayload decodes an envelope's payload map into T via a JSON
// round-trip.
func DecodePayload[T any](env *Envelope) (T, error) {
	var payload T
	raw, err := json.Marshal(env.Payload)
	if err != nil {
		return payload, Invalid(fmt.Sprintf("payload not serializable: %v", err))
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, Invalid(fmt.Sprintf("payload does not match expected shape: %v", err))
	}
	return payload, nil
}

// Middleware wraps handlers to add cross-cutting concerns.
type Middleware func(next Handler) Handler

// Chain applies middleware in order, with the first middleware outermost.
func Chain(handler Handler, middleware ...Middleware) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

// RecoverMiddleware converts handler panics into handler errors.
func RecoverMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, env *Envelope) (result map[string]any, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = HandlerFailure(fmt.Sprintf("handler panic: %v", r))
				}
			}()
			return next.Handle(ctx, env)
		})
	}
}
