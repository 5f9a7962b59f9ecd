package events

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"

// Event represents a structured state change emitted by a program.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Typed is implemented by events that render to the canonical attribute form.
type Typed interface {
	Event
	Event() *types.Event
}

// Recorder buffers events in emission order.
type Recorder struct {
	events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if evt == nil {
		return
	}
	r.events = append(r.events, evt)
}

// Events returns the buffered events.
func (r *Recorder) Events() []Event { return r.events }

// Reset drops the buffered events.
func (r *Recorder) Reset() { r.events = nil }

// Flush forwards the buffered events to dst and resets the recorder.
func (r *Recorder) Flush(dst Emitter) {
	if dst != nil {
		for _, evt := range r.events {
			dst.Emit(evt)
		}
	}
	r.events = nil
}

// Render converts an event into its attribute form when it supports one.
func Render(evt Event) *types.Event {
	if typed, ok := evt.(Typed); ok {
		return typed.Event()
	}
	return &types.Event{Type: evt.EventType(), Attributes: map[string]string{}}
}
