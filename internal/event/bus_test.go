package event

import "testing"

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelA()
	defer cancelB()

	bus.Publish(Event{Kind: LibraryChanged})

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.Kind != LibraryChanged {
				t.Fatalf("subscriber %s got kind %d", name, ev.Kind)
			}
		default:
			t.Fatalf("subscriber %s received nothing", name)
		}
	}
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	// Publish after cancel must not panic and the channel must be closed.
	bus.Publish(Event{Kind: ItemRemoved, ItemID: "li_1"})
	if _, open := <-ch; open {
		t.Fatal("channel still open after cancel")
	}

	// Double cancel is safe.
	cancel()
}

func TestBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	// Fill past the buffer; Publish must never stall.
	for i := 0; i < subscriberBuffer*2; i++ {
		bus.Publish(Event{Kind: ProgressLogged, ItemID: "li_1"})
	}
}
