// Package dispatchkit routes canonical work envelopes to business-logic
// handlers, independent of the transport that delivered them.
//
// One set of handlers (create user, process payment, send notification) can
// be triggered identically from synchronous HTTP requests, message-queue
// consumers, and background task workers. Each adapter reduces its protocol
// to an Envelope and calls Dispatcher.Dispatch; the dispatcher resolves the
// handler, enforces at-most-one effective execution per correlation id, and
// normalizes every result or failure into an Outcome the adapter can
// translate back to its own protocol.
//
// Core pieces:
//   - Envelope: canonical unit of work (event type, payload, correlation id)
//   - Handler: the contract every business-logic unit implements
//   - Registry: static event-type to handler binding table, sealed after wiring
//   - Dispatcher: routing, idempotency, error normalization
//   - idempotency.Store: finalized-outcome records for duplicate suppression
//   - container.Container: constructs handlers with their collaborators
//
// Design Influences:
//   - AWS EventBridge (normalized event envelopes across sources)
//   - Stripe API idempotency keys (claim-then-finalize deduplication)
//   - Apache Kafka consumers (at-least-once delivery, correlation IDs)
package dispatchkit
