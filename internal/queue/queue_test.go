package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestInMemory_PublishConsume(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evt := RegistrationEvent{SessionID: "sess-1", StudentID: "stu-1"}
	if err := q.Publish(ctx, NewRegistrationMessage(evt)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	select {
	case msg := <-msgs:
		if msg.Type != TypeRegistration {
			t.Errorf("type = %q, want %q", msg.Type, TypeRegistration)
		}
		var got RegistrationEvent
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got != evt {
			t.Errorf("event = %+v, want %+v", got, evt)
		}
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}
}

func TestInMemory_PublishHonorsCancellation(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	_ = q.Publish(ctx, Message{Type: "x"})
	cancel()
	// queue is full and ctx cancelled; must not block forever
	if err := q.Publish(ctx, Message{Type: "y"}); err == nil {
		t.Fatal("expected ctx error on full queue")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeRegistration, Body: []byte(`{"session_id":"s|1"}`)}
	got, err := deserialize(serialize(msg))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != msg.Type {
		t.Errorf("type = %q, want %q", got.Type, msg.Type)
	}
	if string(got.Body) != string(msg.Body) {
		t.Errorf("body = %q, want %q", got.Body, msg.Body)
	}
}
