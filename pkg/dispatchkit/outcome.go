package dispatchkit

import "time"

// Status is the terminal state of a dispatch.
type Status string

// Dispatch statuses.
const (
	// StatusSuccess means the handler completed and Result holds its output.
	StatusSuccess Status = "success"

	// StatusFailed means the dispatch failed; Kind, Message and Retryable
	// describe the failure.
	StatusFailed Status = "failed"

	// StatusDuplicate means the correlation id was already processed; the
	// original outcome is replayed and the handler was not invoked again.
	StatusDuplicate Status = "duplicate"
)

// Outcome is the normalized result of one dispatch. Adapters translate it
// into their transport's response: HTTP status and body, message ack/nack,
// task result.
type Outcome struct {
	Status Status `json:"status"`

	// Result is the handler's output payload. Set for successes and for
	// duplicates replaying an original success.
	Result map[string]any `json:"result,omitempty"`

	// Kind, Message and Retryable describe a failure. Retryable tells the
	// adapter whether resubmitting the same correlation id is safe.
	Kind      ErrorKind `json:"kind,omitempty"`
	Message   string    `json:"message,omitempty"`
	Retryable bool      `json:"retryable,omitempty"`

	// Elapsed is the dispatch latency, populated by the Dispatcher.
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// Success creates a successful outcome carrying the handler's result.
func Success(result map[string]any) Outcome {
	return Outcome{Status: StatusSuccess, Result: result}
}

// Fail creates a failed outcome with the kind's default retryability.
func Fail(kind ErrorKind, message string) Outcome {
	return Outcome{Status: StatusFailed, Kind: kind, Message: message, Retryable: kind.Retryable()}
}

// FailErr creates a failed outcome from a classified error.
func FailErr(err error) Outcome {
	derr := Classify(err)
	return Outcome{Status: StatusFailed, Kind: derr.Kind, Message: derr.Message, Retryable: derr.Retryable}
}

// Duplicate wraps an already-finalized outcome for replay to a redelivered
// or concurrent caller. Result and failure fields carry over unchanged.
func Duplicate(original Outcome) Outcome {
	dup := original
	dup.Status = StatusDuplicate
	dup.Elapsed = 0
	return dup
}

// OK reports whether the dispatch had its intended effect: a success, or a
// duplicate replaying one.
func (o Outcome) OK() bool {
	return o.Kind == "" && (o.Status == StatusSuccess || o.Status == StatusDuplicate)
}

// Failed reports whether the outcome carries a failure, including duplicates
// replaying an original failure.
func (o Outcome) Failed() bool {
	return !o.OK()
}

// Err returns the outcome's failure as a classified error, or nil.
func (o Outcome) Err() error {
	if !o.Failed() {
		return nil
	}
	return &Error{Kind: o.Kind, Message: o.Message, Retryable: o.Retryable}
}
