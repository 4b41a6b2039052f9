package events

import (
	"testing"
	"time"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()
	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	b.Publish(NewEvent(KindFilterSubscribed, map[string]int{"filter_id": 1000}))

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Kind != KindFilterSubscribed {
				t.Fatalf("event kind = %q; want %q", evt.Kind, KindFilterSubscribed)
			}
			if len(evt.Payload) == 0 {
				t.Fatalf("event payload empty; want marshalled body")
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive event")
		}
	}
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	// Publish never blocks, even past the subscriber's buffer.
	for i := 0; i < subscriberBufSize*2; i++ {
		b.Publish(NewEvent(KindEngineRefreshed, nil))
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBufSize {
		t.Fatalf("received = %d; want buffer size %d with overflow dropped", received, subscriberBufSize)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Fatalf("channel open after Unsubscribe()")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d; want 0", b.ClientCount())
	}

	// Double unsubscribe must not panic.
	b.Unsubscribe(id)
}
