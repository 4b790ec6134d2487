package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards every T published on bus into ch, for callers
// that consume events in a select loop. Events are dropped while ch is full.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
