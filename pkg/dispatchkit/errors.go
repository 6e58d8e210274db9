package dispatchkit

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a dispatch failure for adapters, which translate it
// into transport-specific behavior (HTTP status, nack-and-requeue, task
// retry).
type ErrorKind string

// Error kinds, ordered roughly by where in the dispatch they arise.
const (
	// KindInvalidEnvelope indicates malformed input, such as a missing event
	// type or correlation id. Never retryable.
	KindInvalidEnvelope ErrorKind = "invalid_envelope"

	// KindUnknownEventType indicates no handler is registered for the event
	// type. Never retryable.
	KindUnknownEventType ErrorKind = "unknown_event_type"

	// KindConfiguration indicates a wiring mistake: duplicate registration or
	// missing collaborator binding. Fatal at startup, never retryable.
	KindConfiguration ErrorKind = "configuration_error"

	// KindHandler indicates a business-rule violation (e.g. payment
	// declined). Retryable only if the handler says so.
	KindHandler ErrorKind = "handler_error"

	// KindDependencyUnavailable indicates a collaborator (database, external
	// API) failed transiently. Retryable.
	KindDependencyUnavailable ErrorKind = "dependency_unavailable"

	// KindTimeout indicates a caller's wait exceeded its deadline. Retryable.
	KindTimeout ErrorKind = "timeout"
)

// Retryable returns the default retry safety for the kind. Handler errors
// carry their own classification and may override this.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindDependencyUnavailable, KindTimeout:
		return true
	default:
		return false
	}
}

// Error is a classified dispatch error. Handlers return it to control how
// their failure surfaces in the Outcome; the Dispatcher wraps everything
// else via Classify.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Retryable tells the adapter whether resubmission is safe.
	Retryable bool

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error with the kind's default retryability.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: kind.Retryable()}
}

// Invalid creates an invalid-envelope error.
func Invalid(message string) *Error {
	return NewError(KindInvalidEnvelope, message)
}

// UnknownType creates an unknown-event-type error.
func UnknownType(eventType string) *Error {
	return NewError(KindUnknownEventType, fmt.Sprintf("no handler registered for %q", eventType))
}

// ConfigError creates a configuration error. Configuration errors abort
// startup; they are never returned as dispatch Outcomes.
func ConfigError(message string) *Error {
	return NewError(KindConfiguration, message)
}

// HandlerFailure creates a non-retryable business-rule error.
func HandlerFailure(message string) *Error {
	return NewError(KindHandler, message)
}

// Unavailable creates a retryable dependency error wrapping its cause.
func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindDependencyUnavailable, Message: message, Retryable: true, Err: err}
}

// Classify normalizes any error into a *Error.
//
// Already-classified errors pass through. Context cancellation and deadline
// expiry become retryable timeouts. Everything else is treated as a
// non-retryable handler error, the fail-safe direction under at-least-once
// delivery.
func Classify(err error) *Error {
	var derr *Error
	if errors.As(err, &derr) {
		return derr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Message: "dispatch interrupted", Retryable: true, Err: err}
	}
	return &Error{Kind: KindHandler, Message: err.Error(), Err: err}
}
