package dispatchkit

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the static event-type to handler binding table. It is mutable
// during the wiring phase and sealed before adapters start consuming it;
// after sealing it is read-only and safe for unlocked concurrent resolution.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	sealed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to an event type. Registering a type twice is a
// configuration error, not an override: overwriting in production is almost
// always a deployment mistake.
func (r *Registry) Register(eventType string, h Handler) error {
	if eventType == "" {
		return ConfigError("event type is required")
	}
	if h == nil {
		return ConfigError(fmt.Sprintf("nil handler for %q", eventType))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ConfigError(fmt.Sprintf("registry is sealed; cannot register %q", eventType))
	}
	if _, exists := r.handlers[eventType]; exists {
		return ConfigError(fmt.Sprintf("handler already registered for %q", eventType))
	}
	r.handlers[eventType] = h
	return nil
}

// MustRegister binds a handler, panicking on configuration error. Intended
// for wiring code where a bad binding must abort startup.
func (r *Registry) MustRegister(eventType string, h Handler) {
	if err := r.Register(eventType, h); err != nil {
		panic(err)
	}
}

// Resolve returns the handler bound to the event type.
func (r *Registry) Resolve(eventType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[eventType]
	if !ok {
		return nil, UnknownType(eventType)
	}
	return h, nil
}

// Has reports whether a handler is bound to the event type.
func (r *Registry) Has(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[eventType]
	return ok
}

// Types returns all bound event types, sorted, for health and diagnostic
// endpoints.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Seal ends the wiring phase. Subsequent Register calls fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether the wiring phase has ended.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
