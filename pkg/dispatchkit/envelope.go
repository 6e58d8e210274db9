package dispatchkit

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical representation of one unit of work. Every inbound
// adapter produces an Envelope; only the Dispatcher consumes it.
//
// Envelopes are treated as read-only once constructed. Use Clone when a
// modified copy is needed.
type Envelope struct {
	// EventType identifies the operation, namespaced by domain
	// (e.g. "user.create", "payment.process").
	EventType string `json:"event_type"`

	// CorrelationID is globally unique and stable across retries of the same
	// logical operation. It drives idempotency and tracing.
	CorrelationID string `json:"correlation_id"`

	// Payload is opaque structured data interpreted only by the resolved
	// handler.
	Payload map[string]any `json:"payload,omitempty"`

	// Source names the adapter that produced the envelope
	// (e.g. "http", "kafka", "worker").
	Source string `json:"source,omitempty"`

	// Timestamp records when the envelope was created.
	Timestamp time.Time `json:"timestamp"`

	// Metadata carries auxiliary context (trace span, delivery attempt).
	// Business logic never reads it; cross-cutting concerns may.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EnvelopeOption configures envelope creation.
type EnvelopeOption func(*Envelope)

// WithCorrelationID sets a caller-supplied correlation id. Without this
// option a UUID is generated, making the envelope its own retry root.
func WithCorrelationID(id string) EnvelopeOption {
	return func(e *Envelope) {
		e.CorrelationID = id
	}
}

// WithSource records the producing adapter.
func WithSource(source string) EnvelopeOption {
	return func(e *Envelope) {
		e.Source = source
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) EnvelopeOption {
	return func(e *Envelope) {
		e.Timestamp = t
	}
}

// WithMetadata adds one metadata entry.
func WithMetadata(key, value string) EnvelopeOption {
	return func(e *Envelope) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		e.Metadata[key] = value
	}
}

// NewEnvelope creates an envelope for the given event type and payload.
// A correlation id is generated unless WithCorrelationID is supplied.
func NewEnvelope(eventType string, payload map[string]any, opts ...EnvelopeOption) *Envelope {
	e := &Envelope{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.CorrelationID == "" {
		e.CorrelationID = uuid.New().String()
	}
	return e
}

// Validate reports whether the envelope satisfies the dispatch preconditions:
// non-empty event type and correlation id.
func (e *Envelope) Validate() error {
	if e == nil {
		return Invalid("envelope is nil")
	}
	if e.EventType == "" {
		return Invalid("event type is required")
	}
	if e.CorrelationID == "" {
		return Invalid("correlation id is required")
	}
	return nil
}

// Clone creates a deep copy of the envelope.
func (e *Envelope) Clone() *Envelope {
	cp := *e
	if e.Payload != nil {
		cp.Payload = make(map[string]any, len(e.Payload))
		for k, v := range e.Payload {
			cp.Payload[k] = v
		}
	}
	if e.Metadata != nil {
		cp.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
