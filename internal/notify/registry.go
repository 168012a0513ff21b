// internal/notify/registry.go

// Package notify routes transient user-visible notifications from the
// engine to whatever display layer registered for them. The engine
// never blocks on or retries a notification.
package notify

import (
	"log/slog"
	"sync"
)

// Kind classifies a notification for routing and display.
type Kind string

const (
	KindError Kind = "error"
	KindInfo  Kind = "info"
)

// Handler receives one notification.
type Handler func(kind Kind, message string)

// Registry fans notifications out to registered handlers. With no
// handler registered a notification is logged and dropped.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

// NewRegistry creates an empty notification registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Kind][]Handler)}
}

// Register adds a handler for the given kind.
func (r *Registry) Register(kind Kind, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], handler)
}

// Notify delivers the message to every handler registered for the kind.
func (r *Registry) Notify(kind Kind, message string) {
	r.mu.RLock()
	handlers := r.handlers[kind]
	r.mu.RUnlock()

	if len(handlers) == 0 {
		slog.Debug("notification dropped, no handler", "kind", string(kind), "message", message)
		return
	}
	for _, h := range handlers {
		h(kind, message)
	}
}
