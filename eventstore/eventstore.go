// Package eventstore holds the append-only event log the aggregates are
// replayed from.
//
// The log is permanent history: events are never mutated or deleted after
// creation. Schema changes are handled by upcasting on the read path, not by
// rewriting stored events.
package eventstore

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack/components/esource"
)

// ErrVersionConflict is returned by Append when the expected version no
// longer matches the stream. The caller must reload the aggregate and
// re-issue the command; the engine itself never retries.
var ErrVersionConflict = errors.New("aggregate version conflict")

// EventStore is the contract between the aggregate core and the durable log.
//
// Load returns the aggregate's full history in append order, with sequence
// numbers and timestamps. An unknown aggregate yields an empty history, not
// an error.
//
// Append stores new events at the end of the stream, assigning each a
// per-aggregate sequence number. expectedVersion is the number of events the
// caller observed when it reconstructed the aggregate; a mismatch means a
// concurrent append won and Append fails with ErrVersionConflict.
type EventStore interface {
	Load(ctx context.Context, aggregateID string) ([]esource.RawEvent, error)
	Append(ctx context.Context, aggregateID string, expectedVersion int, events []esource.RawEvent) error
}

// validateAppend checks every envelope and reports all problems at once.
func validateAppend(aggregateID string, expectedVersion int, events []esource.RawEvent) error {
	var result *multierror.Error

	if aggregateID == "" {
		result = multierror.Append(result, errors.New("empty aggregate ID"))
	}
	if expectedVersion < 0 {
		result = multierror.Append(result, errors.Errorf("negative expected version %d", expectedVersion))
	}

	for i, event := range events {
		if event.ID == "" {
			result = multierror.Append(result, errors.Errorf("event %d has no ID", i))
		}
		if event.Name == "" {
			result = multierror.Append(result, errors.Errorf("event %d has no name", i))
		}
		if event.AggregateID != aggregateID {
			result = multierror.Append(
				result,
				errors.Errorf("event %d belongs to aggregate %q, not %q", i, event.AggregateID, aggregateID),
			)
		}
		if event.OccurredOn.IsZero() {
			result = multierror.Append(result, errors.Errorf("event %d has no occurred-on timestamp", i))
		}
	}

	return result.ErrorOrNil()
}
