package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit/handlers"
)

type paymentFixture struct {
	handler       *handlers.PaymentProcessHandler
	gateway       *handlers.StubPaymentGateway
	users         *handlers.MemoryUserRepository
	payments      *handlers.MemoryPaymentRepository
	notifications *handlers.MemoryNotificationRepository
	publisher     *handlers.LogPublisher
	userID        string
}

func newPaymentFixture(t *testing.T, gateway *handlers.StubPaymentGateway) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		gateway:       gateway,
		users:         handlers.NewMemoryUserRepository(),
		payments:      handlers.NewMemoryPaymentRepository(),
		notifications: handlers.NewMemoryNotificationRepository(),
		publisher:     &handlers.LogPublisher{},
	}
	id, err := f.users.Create(context.Background(), &handlers.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	f.userID = id
	f.handler = handlers.NewPaymentProcessHandler(
		f.gateway, f.users, f.payments, f.notifications, f.publisher, nil)
	return f
}

func (f *paymentFixture) env(overrides map[string]any) *dispatchkit.Envelope {
	payload := map[string]any{
		"user_id":        f.userID,
		"amount":         49.99,
		"currency":       "USD",
		"payment_method": "card",
	}
	for k, v := range overrides {
		payload[k] = v
	}
	return dispatchkit.NewEnvelope("payment.process", payload)
}

func TestPaymentProcess(t *testing.T) {
	f := newPaymentFixture(t, &handlers.StubPaymentGateway{})

	result, err := f.handler.Handle(context.Background(), f.env(nil))
	require.NoError(t, err)

	assert.NotEmpty(t, result["transaction_id"])
	assert.Equal(t, "captured", result["status"])
	assert.Equal(t, 1, f.gateway.Charges())
	assert.Equal(t, 1, f.payments.Len())

	queued, err := f.notifications.ListByRecipient(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "Payment Successful", queued[0].Subject)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "payment.completed", events[0].EventType)
}

func TestPaymentProcessDeclined(t *testing.T) {
	f := newPaymentFixture(t, &handlers.StubPaymentGateway{Decline: "insufficient funds"})

	_, err := f.handler.Handle(context.Background(), f.env(nil))
	require.Error(t, err)
	var derr *dispatchkit.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, dispatchkit.KindHandler, derr.Kind)
	assert.False(t, derr.Retryable)
	assert.Contains(t, derr.Message, "insufficient funds")

	// Declines still leave a payment record and a failure notification.
	assert.Equal(t, 1, f.payments.Len())
	queued, _ := f.notifications.ListByRecipient(context.Background(), "ada@example.com")
	require.Len(t, queued, 1)
	assert.Equal(t, "Payment Failed", queued[0].Subject)
	assert.Empty(t, f.publisher.Events(), "no completion event for a decline")
}

func TestPaymentProcessGatewayOutage(t *testing.T) {
	f := newPaymentFixture(t, &handlers.StubPaymentGateway{Err: errors.New("dial tcp: timeout")})

	_, err := f.handler.Handle(context.Background(), f.env(nil))
	require.Error(t, err)
	var derr *dispatchkit.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, dispatchkit.KindDependencyUnavailable, derr.Kind)
	assert.True(t, derr.Retryable)
	assert.Zero(t, f.payments.Len(), "no record when the charge never reached the gateway")
}

func TestPaymentProcessUnknownUser(t *testing.T) {
	f := newPaymentFixture(t, &handlers.StubPaymentGateway{})

	_, err := f.handler.Handle(context.Background(), f.env(map[string]any{"user_id": "ghost"}))
	require.Error(t, err)
	var derr *dispatchkit.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, dispatchkit.KindHandler, derr.Kind)
	assert.Zero(t, f.gateway.Charges(), "unknown user must never reach the gateway")
}

func TestPaymentProcessValidation(t *testing.T) {
	f := newPaymentFixture(t, &handlers.StubPaymentGateway{})
	cases := []struct {
		name     string
		override map[string]any
	}{
		{"missing user", map[string]any{"user_id": ""}},
		{"zero amount", map[string]any{"amount": 0}},
		{"negative amount", map[string]any{"amount": -5}},
		{"bad currency", map[string]any{"currency": "DOLLARS"}},
		{"missing method", map[string]any{"payment_method": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.handler.Handle(context.Background(), f.env(tc.override))
			require.Error(t, err)
			var derr *dispatchkit.Error
			require.ErrorAs(t, err, &derr)
			assert.False(t, derr.Retryable)
		})
	}
	assert.Zero(t, f.gateway.Charges())
}
