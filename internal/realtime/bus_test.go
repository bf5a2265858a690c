package realtime

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishFansOut(t *testing.T) {
	bus := newTestBus()

	_, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()

	bus.Publish(FolderEvent(EventFolderCreated, "f-1"))

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case event := <-ch:
			if event.Type != EventFolderCreated {
				t.Errorf("subscriber %d: type = %q", i, event.Type)
			}
			if event.Payload["folder_id"] != "f-1" {
				t.Errorf("subscriber %d: payload = %v", i, event.Payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event", i)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := newTestBus()

	id, ch := bus.Subscribe()
	if bus.SubscriberCount() != 1 {
		t.Fatalf("count = %d", bus.SubscriberCount())
	}

	bus.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("count = %d after unsubscribe", bus.SubscriberCount())
	}

	// Idempotent.
	bus.Unsubscribe(id)
}

func TestSlowSubscriberDropsEventsWithoutBlocking(t *testing.T) {
	bus := newTestBus()

	_, ch := bus.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Overflow the buffer; Publish must never block.
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(DocumentEvent(EventDocumentUpload, "d-1", "root"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The buffer holds at most subscriberBuffer events; the rest dropped.
	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != subscriberBuffer {
				t.Errorf("buffered events = %d, want %d", received, subscriberBuffer)
			}
			return
		}
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	bus := newTestBus()
	// Must be a no-op, not a panic.
	bus.Publish(DocumentEvent(EventDocumentDeleted, "d-1", "root"))
}
