package esource

import "time"

// Payload is the schemaless form of an event payload, as read from the log
// and as seen by upcasters.
type Payload map[string]interface{}

// Copy returns a shallow copy of the payload. Upcasters receive copies so a
// failed transform cannot leave a half-rewritten payload behind.
func (p Payload) Copy() Payload {
	if p == nil {
		return nil
	}

	result := make(Payload, len(p))
	for key, value := range p {
		result[key] = value
	}

	return result
}

// RawEvent is an event as stored in the log, before upcasting and decoding
// into a typed Event.
//
// Version is the per-aggregate sequence number. It is assigned by the event
// store on append, never by the domain.
type RawEvent struct {
	ID          string    `json:"id"`
	AggregateID string    `json:"aggregateId"`
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	Payload     Payload   `json:"payload"`
	OccurredOn  time.Time `json:"occurredOn"`
}
