package events

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDispatch_FiltersAndOrders(t *testing.T) {
	d := NewEventDispatcher()

	var got []string
	first := NewFuncObserver("first", func(e Event) error {
		got = append(got, "first:"+e.Type)
		return nil
	})
	onlyRefresh := NewFuncObserver("refresh-only", func(e Event) error {
		got = append(got, "refresh:"+e.Type)
		return nil
	}, TypePatternsRefreshed)

	d.Register(first)
	d.Register(onlyRefresh)

	d.Dispatch(New(TypeHeroesUpdated, HeroesUpdatedEvent{Heroes: 3}))
	d.Dispatch(New(TypePatternsRefreshed, PatternsRefreshedEvent{Patterns: 9}))

	want := []string{"first:heroes:updated", "first:patterns:refreshed", "refresh:patterns:refreshed"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDispatch_ErrorDoesNotStopDelivery(t *testing.T) {
	d := NewEventDispatcher()

	delivered := false
	d.Register(NewFuncObserver("failing", func(Event) error { return errors.New("boom") }))
	d.Register(NewFuncObserver("ok", func(Event) error { delivered = true; return nil }))

	d.Dispatch(New(TypeRefreshStarted, RefreshStartedEvent{RunID: "r1"}))

	if !delivered {
		t.Error("Second observer should still receive the event")
	}
}

func TestUnregister(t *testing.T) {
	d := NewEventDispatcher()
	a := NewLoggingObserver(false)
	b := NewLoggingObserver(true)

	d.Register(a)
	d.Register(b)
	d.Unregister(a)

	if d.ObserverCount() != 1 {
		t.Fatalf("Expected 1 observer, got %d", d.ObserverCount())
	}
	d.Dispatch(New(TypeHeroesUpdated, HeroesUpdatedEvent{Heroes: 1}))
}

func TestDispatchAsync(t *testing.T) {
	d := NewEventDispatcher()

	var wg sync.WaitGroup
	wg.Add(2)
	for _, name := range []string{"a", "b"} {
		d.Register(NewFuncObserver(name, func(Event) error { wg.Done(); return nil }))
	}

	d.DispatchAsync(New(TypePatternsReloaded, PatternsReloadedEvent{Source: "file"}))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Async observers were not notified")
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *EventDispatcher
	d.Dispatch(New(TypeHeroesUpdated, nil))
	d.DispatchAsync(New(TypeHeroesUpdated, nil))
}

func TestGetTypedData(t *testing.T) {
	event := New(TypePatternsRefreshed, PatternsRefreshedEvent{RunID: "run-7", Patterns: 12})

	data, ok := GetTypedData[PatternsRefreshedEvent](event)
	if !ok {
		t.Fatal("Expected typed data")
	}
	if data.RunID != "run-7" || data.Patterns != 12 {
		t.Errorf("Unexpected payload: %+v", data)
	}

	if _, ok := GetTypedData[HeroesUpdatedEvent](event); ok {
		t.Error("Expected type mismatch to fail")
	}
}

func TestLoggingObserver_HandlesEveryPayload(t *testing.T) {
	observer := NewLoggingObserver(true)
	d := NewEventDispatcher()
	d.Register(observer)
	if d.ObserverCount() != 1 {
		t.Fatalf("Expected 1 observer, got %d", d.ObserverCount())
	}

	for _, event := range []Event{
		New(TypePatternsRefreshed, PatternsRefreshedEvent{RunID: "run-1", Degraded: true}),
		New(TypePatternsRefreshed, PatternsRefreshedEvent{RunID: "run-2"}),
		New(TypeHeroesUpdated, HeroesUpdatedEvent{Heroes: 124}),
		New(TypeRefreshStarted, nil),
	} {
		if !observer.ShouldHandle(event.Type) {
			t.Errorf("Expected %s to be handled", event.Type)
		}
		if err := observer.OnEvent(event); err != nil {
			t.Errorf("OnEvent(%s) failed: %v", event.Type, err)
		}
	}

	var nilDispatcher *EventDispatcher
	if nilDispatcher.ObserverCount() != 0 {
		t.Error("Expected nil dispatcher to report no observers")
	}
}
