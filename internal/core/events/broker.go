package events

import "sync"

// Event is a dashboard notification pushed to connected clients.
type Event struct {
	// Type identifies what changed: orders_refreshed, status_changed, order_booked.
	Type string `json:"type"`
	// Data carries event-specific fields (order id, status, courier, ...).
	Data map[string]any `json:"data,omitempty"`
}

// Broker fans events out to subscribers. Publish never blocks: a subscriber
// that stops draining its channel misses events instead of stalling the
// controller.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers evt to every subscriber that has room in its buffer.
func (b *Broker) Publish(evt Event) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
