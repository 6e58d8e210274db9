// Package container wires handlers to their collaborators and produces the
// sealed registry the dispatcher consumes.
//
// Wiring is a static table built exactly once at startup: named collaborator
// bindings plus an event-type to factory map. Build constructs every
// handler, reporting all wiring failures together; a partially wired
// registry never reaches adapters.
package container

import (
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

// Factory constructs one handler, pulling its collaborators from the
// container by name. A factory that cannot satisfy its dependencies returns
// an error, which aborts startup.
type Factory func(c *Container) (dispatchkit.Handler, error)

// Container holds collaborator bindings and handler factories during the
// wiring phase. It is not used after Build returns.
type Container struct {
	bindings  map[string]any
	factories map[string]Factory
	order     []string
	logger    *slog.Logger
	errs      []error
}

// New creates an empty container.
func New() *Container {
	return &Container{
		bindings:  make(map[string]any),
		factories: make(map[string]Factory),
	}
}

// WithLogger sets a logger for wiring diagnostics.
func (c *Container) WithLogger(logger *slog.Logger) *Container {
	c.logger = logger
	return c
}

// Bind registers a named collaborator (repository, gateway, client).
// Rebinding a name is a configuration error, same as re-registering an
// event type.
func (c *Container) Bind(name string, collaborator any) *Container {
	if name == "" {
		c.errs = append(c.errs, dispatchkit.ConfigError("binding name is required"))
		return c
	}
	if collaborator == nil {
		c.errs = append(c.errs, dispatchkit.ConfigError(fmt.Sprintf("nil binding for %q", name)))
		return c
	}
	if _, exists := c.bindings[name]; exists {
		c.errs = append(c.errs, dispatchkit.ConfigError(fmt.Sprintf("collaborator %q already bound", name)))
		return c
	}
	c.bindings[name] = collaborator
	if c.logger != nil {
		c.logger.Debug("collaborator bound", slog.String("name", name))
	}
	return c
}

// Provide registers a handler factory for an event type. Duplicate event
// types are configuration errors surfaced by Build.
func (c *Container) Provide(eventType string, factory Factory) *Container {
	if eventType == "" {
		c.errs = append(c.errs, dispatchkit.ConfigError("event type is required"))
		return c
	}
	if factory == nil {
		c.errs = append(c.errs, dispatchkit.ConfigError(fmt.Sprintf("nil factory for %q", eventType)))
		return c
	}
	if _, exists := c.factories[eventType]; exists {
		c.errs = append(c.errs, dispatchkit.ConfigError(fmt.Sprintf("factory already provided for %q", eventType)))
		return c
	}
	c.factories[eventType] = factory
	c.order = append(c.order, eventType)
	return c
}

// Lookup returns a bound collaborator by name.
func (c *Container) Lookup(name string) (any, bool) {
	v, ok := c.bindings[name]
	return v, ok
}

// Resolve returns the collaborator bound to name as type T. A missing
// binding or a type mismatch is a configuration error.
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	v, ok := c.bindings[name]
	if !ok {
		return zero, dispatchkit.ConfigError(fmt.Sprintf("no collaborator bound for %q", name))
	}
	typed, ok := v.(T)
	if !ok {
		return zero, dispatchkit.ConfigError(fmt.Sprintf("collaborator %q is %T, not %T", name, v, zero))
	}
	return typed, nil
}

// Build runs every factory and returns a fully populated, sealed registry.
// All wiring failures are aggregated into one error; any failure means no
// registry is returned, so partial wiring cannot reach adapters.
func (c *Container) Build() (*dispatchkit.Registry, error) {
	errs := c.errs

	registry := dispatchkit.NewRegistry()
	for _, eventType := range c.order {
		handler, err := c.factories[eventType](c)
		if err != nil {
			errs = append(errs, fmt.Errorf("wire %q: %w", eventType, err))
			continue
		}
		if err := registry.Register(eventType, handler); err != nil {
			errs = append(errs, err)
			continue
		}
		if c.logger != nil {
			c.logger.Debug("handler wired", slog.String("event_type", eventType))
		}
	}

	if err := multierr.Combine(errs...); err != nil {
		return nil, fmt.Errorf("container wiring failed: %w", err)
	}

	registry.Seal()
	return registry, nil
}

// MustBuild builds the registry, panicking on any wiring failure. Intended
// for main functions where a wiring error must abort startup.
func (c *Container) MustBuild() *dispatchkit.Registry {
	registry, err := c.Build()
	if err != nil {
		panic(err)
	}
	return registry
}
