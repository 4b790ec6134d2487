package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher. It is the host's notification
// channel between enumeration, request tracking and the dispatcher.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers of its concrete type.
// Delivery is asynchronous.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case DevicesChangedEvent:
		event.Publish(b.dispatcher, e)
	case MediaRequestStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case CreatingAudioStreamEvent:
		event.Publish(b.dispatcher, e)
	case CapturingLinkSecuredEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type it accepts and returns an
// unsubscribe function. Unknown handler types get a no-op unsubscribe.
// Usage: unsub := bus.Subscribe(func(e DevicesChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(DevicesChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(MediaRequestStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CreatingAudioStreamEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CapturingLinkSecuredEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	return b.dispatcher.Close()
}
