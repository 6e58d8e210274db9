// Package handlers contains the business-logic units bound to event types:
// user creation, payment processing, and notification delivery, plus a
// passthrough handler for permitted unregistered types.
//
// Handlers depend only on the collaborator ports declared here; concrete
// repositories, gateways and senders are bound by the container at startup.
package handlers

import (
	"context"
	"time"
)

// Binding names used by the container wiring.
const (
	BindingUserRepository         = "user_repository"
	BindingPaymentRepository      = "payment_repository"
	BindingNotificationRepository = "notification_repository"
	BindingPaymentGateway         = "payment_gateway"
	BindingEmailSender            = "email_sender"
	BindingEventPublisher         = "event_publisher"
)

// User is a persisted user record.
type User struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Age       int            `json:"age,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Payment is a persisted payment record. Records are written for failed
// charges too, so the payment trail covers declines.
type Payment struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	TransactionID string         `json:"transaction_id"`
	Status        string         `json:"status"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Notification is a queued outbound notification.
type Notification struct {
	ID        string         `json:"id"`
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Channel   string         `json:"channel"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ChargeResult is the payment gateway's answer to a charge attempt.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Status        string
	ErrorMessage  string
}

// SendResult is the email sender's answer to a delivery attempt.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *User) (string, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PaymentRepository persists payment records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) (string, error)
	GetByID(ctx context.Context, id string) (*Payment, error)
}

// NotificationRepository persists queued notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) (string, error)
	ListByRecipient(ctx context.Context, recipient string) ([]*Notification, error)
}

// PaymentGateway charges a payment method through an external provider.
type PaymentGateway interface {
	Charge(ctx context.Context, userID string, amount float64, currency, method, reference string) (*ChargeResult, error)
}

// EmailSender delivers email through an external provider.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) (*SendResult, error)
}

// EventPublisher emits derived domain events (user.created,
// payment.completed) to downstream consumers. Publish failures are the
// publisher's concern; handlers treat publication as best effort.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data map[string]any, correlationID string) error
}
