package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory collaborator implementations, suitable for testing and
// single-instance deployments without external infrastructure.

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

// Create implements UserRepository.
func (r *MemoryUserRepository) Create(_ context.Context, user *User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return "", fmt.Errorf("email %s already taken", user.Email)
	}
	cp := *user
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	r.byEmail[cp.Email] = &cp
	return cp.ID, nil
}

// GetByID implements UserRepository. A missing user returns (nil, nil).
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

// GetByEmail implements UserRepository. A missing user returns (nil, nil).
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

// Len returns the number of stored users. Useful for testing.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// MemoryPaymentRepository is an in-memory PaymentRepository.
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*Payment
}

// NewMemoryPaymentRepository creates an empty repository.
func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{
		payments: make(map[string]*Payment),
	}
}

// Create implements PaymentRepository.
func (r *MemoryPaymentRepository) Create(_ context.Context, payment *Payment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *payment
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	r.payments[cp.ID] = &cp
	return cp.ID, nil
}

// GetByID implements PaymentRepository. A missing payment returns (nil, nil).
func (r *MemoryPaymentRepository) GetByID(_ context.Context, id string) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *payment
	return &cp, nil
}

// Len returns the number of stored payments. Useful for testing.
func (r *MemoryPaymentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}

// MemoryNotificationRepository is an in-memory NotificationRepository.
type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*Notification
}

// NewMemoryNotificationRepository creates an empty repository.
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

// Create implements NotificationRepository.
func (r *MemoryNotificationRepository) Create(_ context.Context, n *Notification) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *n
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	r.notifications = append(r.notifications, &cp)
	return cp.ID, nil
}

// ListByRecipient implements NotificationRepository.
func (r *MemoryNotificationRepository) ListByRecipient(_ context.Context, recipient string) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Notification
	for _, n := range r.notifications {
		if n.Recipient == recipient {
			cp := *n
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Len returns the number of stored notifications. Useful for testing.
func (r *MemoryNotificationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notifications)
}

// StubPaymentGateway is a PaymentGateway with scripted behavior for testing
// and local runs.
type StubPaymentGateway struct {
	// Decline makes every charge come back declined with this message.
	Decline string

	// Err makes every charge attempt fail outright (gateway outage).
	Err error

	mu      sync.Mutex
	charges int
}

// Charge implements PaymentGateway.
func (g *StubPaymentGateway) Charge(_ context.Context, _ string, _ float64, _, _, _ string) (*ChargeResult, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	g.mu.Lock()
	g.charges++
	g.mu.Unlock()

	if g.Decline != "" {
		return &ChargeResult{Status: "declined", ErrorMessage: g.Decline}, nil
	}
	return &ChargeResult{
		Success:       true,
		TransactionID: "txn-" + uuid.New().String()[:8],
		Status:        "captured",
	}, nil
}

// Charges returns how many charge attempts reached the gateway.
func (g *StubPaymentGateway) Charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.charges
}

// StubEmailSender is an EmailSender that records deliveries.
type StubEmailSender struct {
	// Err makes every send attempt fail outright (provider outage).
	Err error

	mu   sync.Mutex
	sent []string
}

// Send implements EmailSender.
func (s *StubEmailSender) Send(_ context.Context, to, _, _ string) (*SendResult, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	s.sent = append(s.sent, to)
	s.mu.Unlock()
	return &SendResult{Success: true, MessageID: "msg-" + uuid.New().String()[:8]}, nil
}

// Sent returns the recipients mailed so far.
func (s *StubEmailSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// LogPublisher is an EventPublisher that records published events in memory.
// It stands in when no broker is wired.
type LogPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// PublishedEvent is one captured publication.
type PublishedEvent struct {
	EventType     string
	Data          map[string]any
	CorrelationID string
}

// Publish implements EventPublisher.
func (p *LogPublisher) Publish(_ context.Context, eventType string, data map[string]any, correlationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{
		EventType:     eventType,
		Data:          data,
		CorrelationID: correlationID,
	})
	return nil
}

// Events returns the captured publications.
func (p *LogPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}
