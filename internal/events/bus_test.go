package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan ColorEmittedEvent, 1)

	unsub := bus.Subscribe(func(e ColorEmittedEvent) {
		received <- e
	})
	defer unsub()

	event := ColorEmittedEvent{
		Source:    "audio",
		R:         255,
		G:         128,
		B:         0,
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.Source != event.Source || got.R != event.R {
		t.Errorf("Expected %+v, got %+v", event, got)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan EngineStateChangedEvent, 1)
	received2 := make(chan EngineStateChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e EngineStateChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e EngineStateChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(EngineStateChangedEvent{Engine: "screen", Running: true})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan LinkStateChangedEvent, 2)

	unsub := bus.Subscribe(func(e LinkStateChangedEvent) {
		received <- e
	})

	bus.Publish(LinkStateChangedEvent{Port: "/dev/ttyUSB0", Connected: true})
	<-received

	unsub()

	bus.Publish(LinkStateChangedEvent{Port: "/dev/ttyUSB0", Connected: false})

	select {
	case e := <-received:
		t.Errorf("Received event after unsubscribe: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()

	// Handlers for unregistered types should not panic
	unsub := bus.Subscribe(func(int) {})
	unsub()
}
