package events

import "testing"

func TestSubscribePublish(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(func(e Event) { got = append(got, e) })

	bus.Publish(Event{Type: AppBackgrounded})
	bus.Publish(Event{Type: ControllerConnected, Count: 2})

	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if got[1].Type != ControllerConnected || got[1].Count != 2 {
		t.Errorf("unexpected event %+v", got[1])
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	count := 0
	token := bus.Subscribe(func(e Event) { count++ })
	bus.Publish(Event{Type: AppForegrounded})
	bus.Unsubscribe(token)
	bus.Publish(Event{Type: AppForegrounded})

	if count != 1 {
		t.Errorf("handler ran %d times, want 1", count)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus()

	a, b := 0, 0
	bus.Subscribe(func(e Event) { a++ })
	bus.Subscribe(func(e Event) { b++ })
	bus.Publish(Event{Type: MembershipChanged, Active: true})

	if a != 1 || b != 1 {
		t.Errorf("delivery counts a=%d b=%d, want 1 and 1", a, b)
	}
}
