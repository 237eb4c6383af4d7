package esource

import (
	"fmt"
)

// Decoder turns a stored raw event into a typed Event.
// It runs after the upcasting pipeline, so it only ever sees payloads in the
// current schema.
type Decoder func(raw RawEvent) (Event, error)

// Reducer folds one typed event into the state. It must be pure: no I/O, no
// reads outside the state and the event itself, and no domain validation.
// Replay trusts the log.
//
// A reducer receiving an event variant it does not know must return
// MissingReducerError, making the mapping from event name to handler closed.
type Reducer[S any] func(state S, event Event) (S, error)

// MissingReducerError means an event's logical name has no registered
// handler. The stored stream cannot be replayed by this build and the load
// must be treated as fatal for the aggregate.
type MissingReducerError struct {
	EventName string
}

func (e MissingReducerError) Error() string {
	return fmt.Sprintf("no reducer registered for event %q", e.EventName)
}

// MalformedPayloadError means a stored payload could not be decoded into the
// types its reducer expects, even after upcasting. Like MissingReducerError
// it is fatal for the aggregate load.
type MalformedPayloadError struct {
	EventName string
	Err       error
}

func (e MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload for event %q: %s", e.EventName, e.Err)
}

func (e MalformedPayloadError) Unwrap() error {
	return e.Err
}

// Engine replays event histories into a state of type S.
//
// It is built from an initial-state constructor, a single exhaustive reducer
// and a decoder per logical event name. Replay and Apply are pure,
// synchronous computations over already-loaded data; an Engine is safe for
// concurrent use across different aggregate instances because it holds no
// per-aggregate state.
type Engine[S any] struct {
	initial  func() S
	reduce   Reducer[S]
	decoders map[string]Decoder
}

func NewEngine[S any](initial func() S, reduce Reducer[S]) *Engine[S] {
	if initial == nil {
		panic("missing initial state constructor")
	}
	if reduce == nil {
		panic("missing reducer")
	}

	return &Engine[S]{
		initial:  initial,
		reduce:   reduce,
		decoders: map[string]Decoder{},
	}
}

// RegisterDecoder binds a logical event name to its decoder.
// Registration happens at wiring time, so mistakes are panics.
func (e *Engine[S]) RegisterDecoder(eventName string, decoder Decoder) {
	if eventName == "" {
		panic("empty event name")
	}
	if decoder == nil {
		panic("missing decoder for event " + eventName)
	}
	if _, ok := e.decoders[eventName]; ok {
		panic("decoder already registered for event " + eventName)
	}

	e.decoders[eventName] = decoder
}

// Decode turns a raw event into a typed one.
func (e *Engine[S]) Decode(raw RawEvent) (Event, error) {
	decoder, ok := e.decoders[raw.Name]
	if !ok {
		return nil, MissingReducerError{EventName: raw.Name}
	}

	event, err := decoder(raw)
	if err != nil {
		return nil, MalformedPayloadError{EventName: raw.Name, Err: err}
	}

	return event, nil
}

// Replay folds a stored history into state, oldest event first, starting from
// the initial state. It never raises domain-invariant errors; those belong to
// command validation, not to replay.
func (e *Engine[S]) Replay(history []RawEvent) (S, error) {
	state := e.initial()

	for _, raw := range history {
		event, err := e.Decode(raw)
		if err != nil {
			return e.initial(), err
		}

		state, err = e.reduce(state, event)
		if err != nil {
			return e.initial(), err
		}
	}

	return state, nil
}

// Apply folds freshly emitted, already typed events into the state.
// It is the single-step equivalent of Replay used after a command succeeds.
func (e *Engine[S]) Apply(state S, events ...Event) (S, error) {
	var err error

	for _, event := range events {
		state, err = e.reduce(state, event)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}
