package events

import (
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/logging"
)

// LoggingObserver logs every event.
type LoggingObserver struct {
	name    string
	verbose bool
}

// NewLoggingObserver creates a new observer that logs events. Verbose
// includes the payload.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
	}
}

// OnEvent logs the event details. Degraded refreshes are logged as warnings.
func (o *LoggingObserver) OnEvent(event Event) error {
	entry := logging.Info().Str("event", event.Type)
	if data, ok := GetTypedData[PatternsRefreshedEvent](event); ok && data.Degraded {
		entry = logging.Warn().Str("event", event.Type).Str("run_id", data.RunID)
	}
	if o.verbose {
		entry = entry.Interface("data", event.Data)
	}
	entry.Msg("Event dispatched")
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *LoggingObserver) ShouldHandle(eventType string) bool {
	return true
}

// FuncObserver adapts a function into an Observer for a fixed set of types.
type FuncObserver struct {
	name  string
	types map[string]struct{}
	fn    func(Event) error
}

// NewFuncObserver creates an observer calling fn for the given event types
// (all types when none are given).
func NewFuncObserver(name string, fn func(Event) error, types ...string) *FuncObserver {
	o := &FuncObserver{name: name, fn: fn}
	if len(types) > 0 {
		o.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			o.types[t] = struct{}{}
		}
	}
	return o
}

// OnEvent calls the wrapped function.
func (o *FuncObserver) OnEvent(event Event) error {
	return o.fn(event)
}

// GetName returns the observer's name.
func (o *FuncObserver) GetName() string {
	return o.name
}

// ShouldHandle reports whether the type is in the observer's set.
func (o *FuncObserver) ShouldHandle(eventType string) bool {
	if o.types == nil {
		return true
	}
	_, ok := o.types[eventType]
	return ok
}
