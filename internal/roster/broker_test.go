package roster

import (
	"testing"
	"time"

	"rollcall/internal/session"
)

func snapshotFor(id string, students ...string) Snapshot {
	records := make([]session.Record, len(students))
	for i, s := range students {
		records[i] = session.Record{SessionID: id, StudentID: s}
	}
	return Snapshot{SessionID: id, Records: records}
}

func TestBroker_DeliversToSessionSubscribers(t *testing.T) {
	b := NewBroker(nil)
	ch, cancel := b.Subscribe("sess-1")
	defer cancel()
	other, cancelOther := b.Subscribe("sess-2")
	defer cancelOther()

	b.Publish(snapshotFor("sess-1", "stu-1"))

	select {
	case snap := <-ch:
		if snap.SessionID != "sess-1" || len(snap.Records) != 1 {
			t.Fatalf("got %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received snapshot")
	}

	select {
	case snap := <-other:
		t.Fatalf("wrong session delivered: %+v", snap)
	default:
	}
}

func TestBroker_CancelClosesChannelAndStopsDelivery(t *testing.T) {
	b := NewBroker(nil)
	ch, cancel := b.Subscribe("sess-1")

	cancel()
	// cancel twice must be safe: every exit path calls it
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel not closed after cancel")
	}

	// must not panic or deliver
	b.Publish(snapshotFor("sess-1", "stu-1"))
}

func TestBroker_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker(nil)
	_, cancel := b.Subscribe("sess-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.Publish(snapshotFor("sess-1", "stu-1"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
