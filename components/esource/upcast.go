package esource

import (
	"github.com/pkg/errors"
)

// Upcaster rewrites a payload recorded under an older schema into the shape
// the current decoders expect.
//
// Implementations must be pure and idempotent: applying one twice produces
// the same payload as applying it once, so a pipeline can safely be re-run
// over already-upcasted events. Transforms are additive only. Unknown fields
// pass through untouched and a payload without the legacy field is returned
// unchanged.
type Upcaster interface {
	// Supports reports whether the upcaster applies to the given logical event name.
	Supports(eventName string) bool

	// Upcast returns the rewritten payload.
	Upcast(payload Payload) (Payload, error)
}

// Pipeline applies upcasters to stored events before they are decoded.
//
// Order matters: upcasters run in the order the schema changes were
// introduced, so later upcasters only ever see already-upcasted payloads
// from earlier ones.
type Pipeline []Upcaster

// Upcast runs the event's payload through every supporting upcaster.
// A failing transform is a replay-integrity problem and is reported as
// MalformedPayloadError.
func (p Pipeline) Upcast(raw RawEvent) (RawEvent, error) {
	payload := raw.Payload

	for _, upcaster := range p {
		if !upcaster.Supports(raw.Name) {
			continue
		}

		upcasted, err := upcaster.Upcast(payload.Copy())
		if err != nil {
			return RawEvent{}, MalformedPayloadError{
				EventName: raw.Name,
				Err:       errors.Wrap(err, "upcasting failed"),
			}
		}

		payload = upcasted
	}

	raw.Payload = payload

	return raw, nil
}

// UpcastAll upcasts a whole history, preserving order.
func (p Pipeline) UpcastAll(history []RawEvent) ([]RawEvent, error) {
	if len(p) == 0 {
		return history, nil
	}

	result := make([]RawEvent, 0, len(history))

	for _, raw := range history {
		upcasted, err := p.Upcast(raw)
		if err != nil {
			return nil, err
		}

		result = append(result, upcasted)
	}

	return result, nil
}
