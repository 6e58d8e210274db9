package handlers

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

// GenericEventHandler is a passthrough for event types that have no
// dedicated handler but are permitted through the dispatcher as its
// fallback. It republishes the event unchanged and echoes the payload, so
// the caller still gets idempotent, observable delivery semantics.
type GenericEventHandler struct {
	publisher EventPublisher
	logger    *slog.Logger
}

// NewGenericEventHandler wires the passthrough handler.
func NewGenericEventHandler(publisher EventPublisher, logger *slog.Logger) *GenericEventHandler {
	return &GenericEventHandler{publisher: publisher, logger: logger}
}

// Handle implements dispatchkit.Handler.
func (h *GenericEventHandler) Handle(ctx context.Context, env *dispatchkit.Envelope) (map[string]any, error) {
	if h.logger != nil {
		h.logger.Info("passthrough event forwarded",
			slog.String("event_type", env.EventType),
			slog.String("correlation_id", env.CorrelationID),
		)
	}
	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, env.EventType, env.Payload, env.CorrelationID); err != nil {
			return nil, dispatchkit.Unavailable("passthrough publish failed", err)
		}
	}
	return map[string]any{
		"forwarded":  true,
		"event_type": env.EventType,
	}, nil
}
