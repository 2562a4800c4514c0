package realtime

import (
	"context"
	"testing"
	"time"
)

func TestHubDeliversToResourceSubscribers(t *testing.T) {
	hub := NewHub()
	roomA, unsubA := hub.Subscribe("room-a")
	defer unsubA()
	roomB, unsubB := hub.Subscribe("room-b")
	defer unsubB()

	pub := NewLocalPublisher(hub)
	ev, err := NewEvent("room-a", "nudge", map[string]string{"emoji": "💛"})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if err := pub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-roomA:
		if got.Type != "nudge" {
			t.Errorf("got type %q, want nudge", got.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("room-a subscriber did not receive event")
	}

	select {
	case got := <-roomB:
		t.Fatalf("room-b received unrelated event %+v", got)
	default:
	}
}

func TestHubSlowSubscriberKeepsLatest(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe("dq-1")
	defer unsub()

	total := subscriberBuffer + 5
	for i := 0; i < total; i++ {
		hub.Deliver(Event{Resource: "dq-1", Type: "message", Payload: []byte{byte('0' + i%10)}})
	}

	if len(ch) != subscriberBuffer {
		t.Fatalf("buffer holds %d events, want %d", len(ch), subscriberBuffer)
	}

	var last Event
	for len(ch) > 0 {
		last = <-ch
	}
	want := byte('0' + (total-1)%10)
	if string(last.Payload) != string([]byte{want}) {
		t.Errorf("last event payload %q, want %q", last.Payload, []byte{want})
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe("room-a")
	if hub.Subscribers("room-a") != 1 {
		t.Fatalf("expected 1 subscriber")
	}

	unsub()
	unsub()

	if hub.Subscribers("room-a") != 0 {
		t.Errorf("expected no subscribers after unsubscribe")
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}

	hub.Deliver(Event{Resource: "room-a", Type: "message"})
}
