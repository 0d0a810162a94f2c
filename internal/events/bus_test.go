package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}, EventRouteDecided)

	bus.Publish(NewTypedEvent("test", RouteDecidedPayload{Skill: "equity-scorer", Method: "extension"}))
	bus.Publish(NewTypedEvent("test", SkillStartedPayload{SkillName: "equity-scorer"}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventRouteDecided {
		t.Errorf("expected route.decided, got %s", received[0].Type)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewTypedEvent("test", RouteDecidedPayload{Skill: "seq-wrangler", Method: "keyword"}))
	bus.Publish(NewTypedEvent("test", SkillStartedPayload{SkillName: "seq-wrangler"}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	unsub := bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewTypedEvent("test", SkillStartedPayload{SkillName: "vcf-annotator"}))
	time.Sleep(50 * time.Millisecond)

	unsub()

	bus.Publish(NewTypedEvent("test", SkillStartedPayload{SkillName: "vcf-annotator"}))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 1 {
		t.Errorf("expected 1 event after unsubscribe, got %d", count)
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.Add(NewTypedEvent("test", SkillStartedPayload{SkillName: "lit-synthesizer"}))
	}

	events := rb.Get(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}

func TestSubscribeChan(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(8, EventRouteDecided)
	defer unsub()

	bus.Publish(NewTypedEvent("test", RouteDecidedPayload{Skill: "struct-predictor", Method: "keyword"}))

	select {
	case e := <-ch:
		if e.Type != EventRouteDecided {
			t.Errorf("expected route.decided, got %s", e.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestExtractPayloadRoundTrip(t *testing.T) {
	evt := NewTypedEventWithRun("test", SkillCompletedPayload{
		SkillName: "scrna-orchestrator",
		ExitCode:  0,
		Output:    "clustering done",
	}, "run_abc12345")

	if evt.RunID != "run_abc12345" {
		t.Errorf("expected run ID on event, got %q", evt.RunID)
	}

	payload, ok := GetSkillCompletedPayload(evt)
	if !ok {
		t.Fatal("expected payload to extract")
	}
	if payload.SkillName != "scrna-orchestrator" {
		t.Errorf("unexpected skill name %q", payload.SkillName)
	}
	if payload.Output != "clustering done" {
		t.Errorf("unexpected output %q", payload.Output)
	}
}
