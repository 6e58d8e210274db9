package handlers

import (
	"context"
	"fmt"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

// NotificationSendPayload is the expected payload shape for
// "notification.send".
type NotificationSendPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Channel   string `json:"channel,omitempty"`
}

// Validate checks the payload's field constraints.
func (p NotificationSendPayload) Validate() error {
	if p.Recipient == "" {
		return dispatchkit.HandlerFailure("recipient is required")
	}
	if p.Subject == "" {
		return dispatchkit.HandlerFailure("subject is required")
	}
	return nil
}

// NotificationSendHandler delivers email notifications through the sender
// port. Other channels (sms, push) belong to other handlers.
type NotificationSendHandler struct {
	sender EmailSender
}

// NewNotificationSendHandler wires the handler with its sender.
func NewNotificationSendHandler(sender EmailSender) *NotificationSendHandler {
	return &NotificationSendHandler{sender: sender}
}

// Handle implements dispatchkit.Handler.
func (h *NotificationSendHandler) Handle(ctx context.Context, env *dispatchkit.Envelope) (map[string]any, error) {
	payload, err := dispatchkit.DecodePayload[NotificationSendPayload](env)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	channel := payload.Channel
	if channel == "" {
		channel = "email"
	}
	if channel != "email" {
		return nil, dispatchkit.HandlerFailure(fmt.Sprintf("unsupported channel %q, this handler sends email only", channel))
	}

	result, err := h.sender.Send(ctx, payload.Recipient, payload.Subject, payload.Body)
	if err != nil {
		return nil, dispatchkit.Unavailable("email provider unreachable", err)
	}
	if !result.Success {
		return nil, dispatchkit.HandlerFailure(fmt.Sprintf("email not sent: %s", result.Error))
	}

	return map[string]any{"message_id": result.MessageID}, nil
}
