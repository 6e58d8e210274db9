package handlers

import (
	"log/slog"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit/container"
)

// RegisterAll provides factories for every handler in this package. The
// container must have the collaborator bindings named in ports.go; a
// missing binding fails the container build, never a dispatch.
func RegisterAll(c *container.Container, logger *slog.Logger) {
	c.Provide("user.create", func(c *container.Container) (dispatchkit.Handler, error) {
		users, err := container.Resolve[UserRepository](c, BindingUserRepository)
		if err != nil {
			return nil, err
		}
		notifications, err := container.Resolve[NotificationRepository](c, BindingNotificationRepository)
		if err != nil {
			return nil, err
		}
		publisher, err := container.Resolve[EventPublisher](c, BindingEventPublisher)
		if err != nil {
			return nil, err
		}
		return NewUserCreateHandler(users, notifications, publisher, logger), nil
	})

	c.Provide("payment.process", func(c *container.Container) (dispatchkit.Handler, error) {
		gateway, err := container.Resolve[PaymentGateway](c, BindingPaymentGateway)
		if err != nil {
			return nil, err
		}
		users, err := container.Resolve[UserRepository](c, BindingUserRepository)
		if err != nil {
			return nil, err
		}
		payments, err := container.Resolve[PaymentRepository](c, BindingPaymentRepository)
		if err != nil {
			return nil, err
		}
		notifications, err := container.Resolve[NotificationRepository](c, BindingNotificationRepository)
		if err != nil {
			return nil, err
		}
		publisher, err := container.Resolve[EventPublisher](c, BindingEventPublisher)
		if err != nil {
			return nil, err
		}
		return NewPaymentProcessHandler(gateway, users, payments, notifications, publisher, logger), nil
	})

	c.Provide("notification.send", func(c *container.Container) (dispatchkit.Handler, error) {
		sender, err := container.Resolve[EmailSender](c, BindingEmailSender)
		if err != nil {
			return nil, err
		}
		return NewNotificationSendHandler(sender), nil
	})
}

// BindMemoryDefaults binds in-memory implementations for every collaborator
// port. Tests and local runs use this; production wiring binds real
// adapters instead.
func BindMemoryDefaults(c *container.Container) {
	c.Bind(BindingUserRepository, NewMemoryUserRepository())
	c.Bind(BindingPaymentRepository, NewMemoryPaymentRepository())
	c.Bind(BindingNotificationRepository, NewMemoryNotificationRepository())
	c.Bind(BindingPaymentGateway, &StubPaymentGateway{})
	c.Bind(BindingEmailSender, &StubEmailSender{})
	c.Bind(BindingEventPublisher, &LogPublisher{})
}
