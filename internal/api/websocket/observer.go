package websocket

import (
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/events"
)

// Observer forwards dispatcher events to WebSocket clients.
type Observer struct {
	hub *Hub
}

// NewObserver creates an observer broadcasting to hub.
func NewObserver(hub *Hub) *Observer {
	return &Observer{hub: hub}
}

// OnEvent broadcasts the event. A nil or stopped hub drops it.
func (o *Observer) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}
	o.hub.BroadcastEvent(Event{
		Type: event.Type,
		Data: event.Data,
		Time: event.Time,
	})
	return nil
}

// GetName returns the observer's name.
func (o *Observer) GetName() string {
	return "WebSocketObserver"
}

// ShouldHandle forwards every event type.
func (o *Observer) ShouldHandle(string) bool {
	return true
}

var _ events.Observer = (*Observer)(nil)
