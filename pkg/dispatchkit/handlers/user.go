package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

// UserCreatePayload is the expected payload shape for "user.create".
type UserCreatePayload struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Age      int            `json:"age,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the payload's field constraints.
func (p UserCreatePayload) Validate() error {
	if p.Name == "" || len(p.Name) > 100 {
		return dispatchkit.HandlerFailure("name must be 1-100 characters")
	}
	if !emailPattern.MatchString(p.Email) {
		return dispatchkit.HandlerFailure(fmt.Sprintf("invalid email %q", p.Email))
	}
	if p.Age < 0 || p.Age > 120 {
		return dispatchkit.HandlerFailure("age must be between 0 and 120")
	}
	return nil
}

// UserCreateHandler creates a user, queues a welcome notification, and
// publishes user.created.
type UserCreateHandler struct {
	users         UserRepository
	notifications NotificationRepository
	publisher     EventPublisher
	logger        *slog.Logger
}

// NewUserCreateHandler wires the handler with its collaborators.
func NewUserCreateHandler(
	users UserRepository,
	notifications NotificationRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) *UserCreateHandler {
	return &UserCreateHandler{
		users:         users,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Handle implements dispatchkit.Handler.
func (h *UserCreateHandler) Handle(ctx context.Context, env *dispatchkit.Envelope) (map[string]any, error) {
	payload, err := dispatchkit.DecodePayload[UserCreatePayload](env)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	existing, err := h.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		return nil, dispatchkit.Unavailable("user lookup failed", err)
	}
	if existing != nil {
		return nil, dispatchkit.HandlerFailure(fmt.Sprintf("user with email %s already exists", payload.Email))
	}

	userID, err := h.users.Create(ctx, &User{
		Name:     payload.Name,
		Email:    payload.Email,
		Age:      payload.Age,
		Metadata: payload.Metadata,
	})
	if err != nil {
		return nil, dispatchkit.Unavailable("user creation failed", err)
	}

	// Welcome notification is best effort - the user exists either way.
	if _, err := h.notifications.Create(ctx, &Notification{
		Recipient: payload.Email,
		Subject:   "Welcome!",
		Body:      fmt.Sprintf("Hello %s, welcome to our platform!", payload.Name),
		Channel:   "email",
		Status:    "pending",
		Metadata:  map[string]any{"user_id": userID, "type": "welcome"},
	}); err != nil && h.logger != nil {
		h.logger.Warn("welcome notification not queued",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	if err := h.publisher.Publish(ctx, "user.created", map[string]any{
		"user_id": userID,
		"email":   payload.Email,
		"name":    payload.Name,
	}, env.CorrelationID); err != nil && h.logger != nil {
		h.logger.Warn("user.created not published",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return map[string]any{
		"user_id": userID,
		"email":   payload.Email,
		"name":    payload.Name,
	}, nil
}
