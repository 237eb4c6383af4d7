package esource

import "time"

// Event is a single fact from an aggregate's history.
// Implementations are immutable value types carrying enough payload to fully
// reconstruct the state fields they affect.
//
// EventName returns the event's stable logical name. Dispatch happens on this
// name, not on the Go type, so upcasted payloads can be redirected correctly.
type Event interface {
	EventName() string
	EventOccurredOn() time.Time
}

// Recorder buffers events emitted by aggregate commands until the caller pops
// them for persistence. Aggregates embed it.
type Recorder struct {
	events []Event
}

func (r *Recorder) RecordThat(event Event) {
	if event == nil {
		return
	}
	r.events = append(r.events, event)
}

// PopEvents returns the recorded events and clears the buffer.
func (r *Recorder) PopEvents() []Event {
	events := r.events
	r.events = nil
	return events
}

func (r *Recorder) HasPendingEvents() bool {
	return len(r.events) > 0
}
