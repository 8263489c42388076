// Package event provides the session-scoped notification bus connecting the
// sync layer to the views. It replaces an ambient global event emitter with
// an injected value a test harness can observe directly.
package event

import "sync"

// Kind identifies what happened.
type Kind int

const (
	// LibraryChanged signals that the catalogue's contents changed somewhere
	// else in the app (merge, removal, import) and the list must refetch.
	LibraryChanged Kind = iota
	// ItemRemoved signals that one item turned out to be already gone.
	ItemRemoved
	// ProgressLogged signals a successfully recorded progress entry.
	ProgressLogged
)

// Event is one bus notification. ItemID is set when the event concerns a
// single catalogue entry.
type Event struct {
	Kind   Kind
	ItemID string
}

const subscriberBuffer = 16

// Bus fans events out to subscribers. Delivery is non-blocking: a subscriber
// that stops draining its channel loses events rather than stalling
// publishers.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

// NewBus returns an empty bus ready for use.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel function removes the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every current subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
