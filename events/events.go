// Package events is the explicit event bus replacing global broadcast:
// many producers (lifecycle hooks, input devices, display routing,
// account changes) fan in to one coordinator consumer, which subscribes
// at session start and unsubscribes at teardown.
package events

import "sync"

// Type identifies an event source.
type Type int

const (
	AppBackgrounded Type = iota
	AppForegrounded
	ControllerConnected
	ControllerDisconnected
	KeyboardConnected
	KeyboardDisconnected
	ExternalDisplayConnected
	ExternalDisplayDisconnected
	MembershipChanged
	OnlineConnected
	OnlineDisconnected
)

// Event carries one occurrence. Payload meaning depends on Type:
// controller and keyboard hot-plug events carry the count of connected
// external input devices, membership events carry the active flag.
type Event struct {
	Type    Type
	Count   int
	Active  bool
	Payload any
}

// Handler consumes events. Handlers run on the publisher's goroutine.
type Handler func(Event)

// Bus fans events from many producers into subscribed handlers.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns a token for Unsubscribe.
func (b *Bus) Subscribe(h Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs[b.next] = h
	return b.next
}

// Unsubscribe removes a handler. Unknown tokens are ignored.
func (b *Bus) Unsubscribe(token int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, token)
}

// Publish delivers the event to every current subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
