// internal/channel/broker.go

// Package channel implements the per-generation event subscription
// path: a named, single-subscriber publish/subscribe broker. Channel
// names are derived from freshly generated placeholder message ids, so
// every generation gets its own channel.
package channel

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/terryso/proxycast/internal/types"
)

// Handler consumes one stream event. Dispatch is synchronous: Publish
// returns after the handler has run, preserving emission order for a
// given channel.
type Handler func(ev types.StreamEvent)

// Broker routes events to the subscriber of a named channel.
type Broker struct {
	mu   sync.RWMutex
	subs map[types.ChannelName]Handler
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[types.ChannelName]Handler)}
}

// Subscribe registers the handler for the named channel. A channel has
// exactly one subscriber; subscribing to a taken name is an error.
func (b *Broker) Subscribe(name types.ChannelName, h Handler) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.subs[name]; exists {
		return nil, fmt.Errorf("channel already subscribed: %s", name)
	}
	b.subs[name] = h
	return &Subscription{broker: b, name: name}, nil
}

// Publish delivers the event to the channel's subscriber, if any.
// Returns false when the event was dropped because nobody listens —
// the normal case for events arriving after cancellation.
func (b *Broker) Publish(name types.ChannelName, ev types.StreamEvent) bool {
	b.mu.RLock()
	h, ok := b.subs[name]
	b.mu.RUnlock()
	if !ok {
		slog.Debug("dropping event for unsubscribed channel", "channel", string(name), "type", string(ev.Type))
		return false
	}
	h(ev)
	return true
}

// Subscription is the exclusively owned handle for one channel. It must
// be closed on every exit path of a generation.
type Subscription struct {
	broker *Broker
	name   types.ChannelName
	mu     sync.Mutex
	closed bool
}

// Name returns the channel name this subscription listens on.
func (s *Subscription) Name() types.ChannelName {
	return s.name
}

// Close detaches the subscriber. Idempotent: closing twice is a no-op,
// and events published after Close are dropped by the broker.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.broker.mu.Lock()
	delete(s.broker.subs, s.name)
	s.broker.mu.Unlock()
}
