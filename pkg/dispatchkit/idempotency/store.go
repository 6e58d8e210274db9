// Package idempotency persists finalized dispatch outcomes keyed by
// correlation id, so redelivered work is answered from the record instead of
// re-executing business logic.
//
// Stores hold only finalized records. In-flight tracking is in-process state
// owned by the dispatcher; persisting it would leave unreleasable claims
// behind after a crash. Records are evicted after a retention window by
// Sweeper; the window is deployment policy, not a dispatch invariant.
package idempotency

import (
	"context"
	"errors"
	"time"
)

// Record is one finalized dispatch outcome.
type Record struct {
	// CorrelationID identifies the logical operation.
	CorrelationID string `json:"correlation_id"`

	// EventType is the operation that produced the outcome.
	EventType string `json:"event_type"`

	// Status is the terminal dispatch status ("success" or "failed").
	Status string `json:"status"`

	// Result is the serialized success payload, if any.
	Result []byte `json:"result,omitempty"`

	// Kind, Message and Retryable describe a failure outcome.
	Kind      string `json:"kind,omitempty"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`

	// CreatedAt is when the dispatch began; FinalizedAt when its outcome was
	// written.
	CreatedAt   time.Time `json:"created_at"`
	FinalizedAt time.Time `json:"finalized_at"`
}

// Store persists finalized records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get retrieves the record for a correlation id.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, correlationID string) (*Record, error)

	// Put stores a finalized record, overwriting any existing record for the
	// same correlation id.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Returns nil if the record doesn't exist.
	Delete(ctx context.Context, correlationID string) error

	// Sweep evicts records finalized before the cutoff and returns how many
	// were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)

	// Len returns the number of stored records.
	Len(ctx context.Context) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no record exists for the correlation id.
	ErrNotFound = errors.New("idempotency record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("idempotency store is closed")
)
