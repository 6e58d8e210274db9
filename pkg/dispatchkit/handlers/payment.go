package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

// PaymentProcessPayload is the expected payload shape for "payment.process".
type PaymentProcessPayload struct {
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"`
	Reference     string  `json:"reference,omitempty"`
}

// Validate checks the payload's field constraints.
func (p PaymentProcessPayload) Validate() error {
	if p.UserID == "" {
		return dispatchkit.HandlerFailure("user_id is required")
	}
	if p.Amount <= 0 {
		return dispatchkit.HandlerFailure("amount must be positive")
	}
	if len(p.Currency) != 3 {
		return dispatchkit.HandlerFailure("currency must be a 3-letter code")
	}
	if p.PaymentMethod == "" {
		return dispatchkit.HandlerFailure("payment_method is required")
	}
	return nil
}

// PaymentProcessHandler charges a payment through the gateway, records the
// attempt, notifies the user, and publishes payment.completed on success.
type PaymentProcessHandler struct {
	gateway       PaymentGateway
	users         UserRepository
	payments      PaymentRepository
	notifications NotificationRepository
	publisher     EventPublisher
	logger        *slog.Logger
}

// NewPaymentProcessHandler wires the handler with its collaborators.
func NewPaymentProcessHandler(
	gateway PaymentGateway,
	users UserRepository,
	payments PaymentRepository,
	notifications NotificationRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) *PaymentProcessHandler {
	return &PaymentProcessHandler{
		gateway:       gateway,
		users:         users,
		payments:      payments,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Handle implements dispatchkit.Handler.
func (h *PaymentProcessHandler) Handle(ctx context.Context, env *dispatchkit.Envelope) (map[string]any, error) {
	payload, err := dispatchkit.DecodePayload[PaymentProcessPayload](env)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	user, err := h.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return nil, dispatchkit.Unavailable("user lookup failed", err)
	}
	if user == nil {
		return nil, dispatchkit.HandlerFailure(fmt.Sprintf("user %s not found", payload.UserID))
	}

	charge, err := h.gateway.Charge(ctx, payload.UserID, payload.Amount, payload.Currency, payload.PaymentMethod, payload.Reference)
	if err != nil {
		return nil, dispatchkit.Unavailable("payment gateway unreachable", err)
	}

	// The payment trail records declines as well as successes.
	recordID, err := h.payments.Create(ctx, &Payment{
		UserID:        payload.UserID,
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		TransactionID: charge.TransactionID,
		Status:        charge.Status,
		Metadata: map[string]any{
			"payment_method": payload.PaymentMethod,
			"reference":      payload.Reference,
			"gateway_error":  charge.ErrorMessage,
		},
	})
	if err != nil {
		return nil, dispatchkit.Unavailable("payment record write failed", err)
	}

	if !charge.Success {
		h.notify(ctx, user.Email, "Payment Failed",
			fmt.Sprintf("Your payment of %.2f %s could not be processed: %s",
				payload.Amount, payload.Currency, charge.ErrorMessage),
			map[string]any{"user_id": payload.UserID, "type": "payment_failure"})
		return nil, dispatchkit.HandlerFailure(fmt.Sprintf("payment declined: %s", charge.ErrorMessage))
	}

	h.notify(ctx, user.Email, "Payment Successful",
		fmt.Sprintf("Your payment of %.2f %s has been processed.", payload.Amount, payload.Currency),
		map[string]any{"user_id": payload.UserID, "transaction_id": charge.TransactionID, "type": "payment_success"})

	if err := h.publisher.Publish(ctx, "payment.completed", map[string]any{
		"user_id":           payload.UserID,
		"amount":            payload.Amount,
		"currency":          payload.Currency,
		"transaction_id":    charge.TransactionID,
		"payment_record_id": recordID,
	}, env.CorrelationID); err != nil && h.logger != nil {
		h.logger.Warn("payment.completed not published",
			slog.String("transaction_id", charge.TransactionID),
			slog.String("error", err.Error()),
		)
	}

	return map[string]any{
		"transaction_id":    charge.TransactionID,
		"payment_record_id": recordID,
		"status":            charge.Status,
	}, nil
}

// notify queues a notification best effort.
func (h *PaymentProcessHandler) notify(ctx context.Context, recipient, subject, body string, meta map[string]any) {
	_, err := h.notifications.Create(ctx, &Notification{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Channel:   "email",
		Status:    "pending",
		Metadata:  meta,
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("payment notification not queued",
			slog.String("recipient", recipient),
			slog.String("error", err.Error()),
		)
	}
}
