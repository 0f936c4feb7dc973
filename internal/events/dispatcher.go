// Package events distributes domain events (pattern refreshes, catalog
// updates) to registered observers such as the websocket hub.
package events

import (
	"sync"
	"time"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
)

// Event is a domain event delivered to observers.
type Event struct {
	// Type is the event type (e.g. "patterns:refreshed").
	Type string `json:"type"`

	// Data is the typed payload (one of the *Event structs in messages.go).
	Data any `json:"data,omitempty"`

	// Time is when the event was created.
	Time time.Time `json:"time"`
}

// New creates an event stamped with the current time.
func New(eventType string, data any) Event {
	return Event{Type: eventType, Data: data, Time: time.Now().UTC()}
}

// Observer is notified of dispatched events.
type Observer interface {
	// OnEvent handles one event.
	OnEvent(event Event) error

	// GetName returns a human-readable name for logging.
	GetName() string

	// ShouldHandle filters which event types the observer receives.
	ShouldHandle(eventType string) bool
}

// EventDispatcher fans events out to observers. Safe for concurrent use.
type EventDispatcher struct {
	observers []Observer
	mu        sync.RWMutex
}

// NewEventDispatcher creates a new EventDispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		observers: make([]Observer, 0),
	}
}

// Register adds an observer.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	logging.Debug().Str("observer", observer.GetName()).Msg("Registered event observer")
}

// Unregister removes an observer.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			logging.Debug().Str("observer", observer.GetName()).Msg("Unregistered event observer")
			return
		}
	}
}

func (d *EventDispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

// Dispatch notifies observers sequentially in registration order. Observer
// errors are logged and do not stop delivery.
func (d *EventDispatcher) Dispatch(event Event) {
	if d == nil {
		return
	}
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			logging.Warn().Err(err).
				Str("observer", observer.GetName()).
				Str("event", event.Type).
				Msg("Observer failed to handle event")
		}
	}
}

// DispatchAsync notifies each observer in its own goroutine.
func (d *EventDispatcher) DispatchAsync(event Event) {
	if d == nil {
		return
	}
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go func(obs Observer) {
			if err := obs.OnEvent(event); err != nil {
				logging.Warn().Err(err).
					Str("observer", obs.GetName()).
					Str("event", event.Type).
					Msg("Observer failed to handle event")
			}
		}(observer)
	}
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// GetTypedData extracts the payload of an event as T.
func GetTypedData[T any](event Event) (T, bool) {
	typed, ok := event.Data.(T)
	return typed, ok
}
