package order

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack"
	"github.com/trackpay/ordertrack/components/esource"
	"github.com/trackpay/ordertrack/eventstore"
)

// Repository glues the event store, the upcasting pipeline and the replay
// engine together: read stream, upcast, replay on load; pop recorded events,
// wrap into envelopes, append on save.
type Repository struct {
	store      eventstore.EventStore
	engine     *esource.Engine[*Order]
	upcasters  esource.Pipeline
	logger     ordertrack.LoggerAdapter
	newEventID func() string
}

func NewRepository(store eventstore.EventStore, logger ordertrack.LoggerAdapter) *Repository {
	if store == nil {
		panic("missing event store")
	}
	if logger == nil {
		logger = ordertrack.NopLogger{}
	}

	return &Repository{
		store:      store,
		engine:     NewEngine(),
		upcasters:  Upcasters(),
		logger:     logger,
		newEventID: ordertrack.NewULID,
	}
}

// Load reconstructs the order from its history. The returned version is the
// number of stored events the state was derived from and must be passed back
// to Save for the optimistic concurrency check.
func (r *Repository) Load(ctx context.Context, id ID) (*Order, int, error) {
	history, err := r.store.Load(ctx, id.String())
	if err != nil {
		return nil, 0, errors.Wrapf(err, "cannot load history of order %s", id)
	}

	if len(history) == 0 {
		return nil, 0, ErrNotFound
	}

	upcasted, err := r.upcasters.UpcastAll(history)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "cannot upcast history of order %s", id)
	}

	o, err := r.engine.Replay(upcasted)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "cannot replay order %s", id)
	}

	r.logger.Trace("Replayed order", ordertrack.LogFields{
		"order_id": id,
		"events":   len(history),
	})

	return o, len(history), nil
}

// Add persists a freshly created order as the first events of its stream.
func (r *Repository) Add(ctx context.Context, o *Order) error {
	return r.Save(ctx, o, 0)
}

// Save appends the order's recorded events at expectedVersion.
// On eventstore.ErrVersionConflict nothing was appended; the caller must
// reload and re-issue the command.
func (r *Repository) Save(ctx context.Context, o *Order, expectedVersion int) error {
	events := o.PopEvents()
	if len(events) == 0 {
		return nil
	}

	raw := make([]esource.RawEvent, 0, len(events))

	for _, event := range events {
		payload, err := encodeEvent(event)
		if err != nil {
			return errors.Wrapf(err, "cannot encode events of order %s", o.ID())
		}

		raw = append(raw, esource.RawEvent{
			ID:          r.newEventID(),
			AggregateID: o.ID().String(),
			Name:        event.EventName(),
			Payload:     payload,
			OccurredOn:  event.EventOccurredOn(),
		})
	}

	if err := r.store.Append(ctx, o.ID().String(), expectedVersion, raw); err != nil {
		return errors.Wrapf(err, "cannot append events of order %s", o.ID())
	}

	r.logger.Debug("Appended order events", ordertrack.LogFields{
		"order_id": o.ID(),
		"events":   len(raw),
	})

	return nil
}

// Execute runs a command against the current state of the order and persists
// the result, retrying with exponential backoff when a concurrent writer
// wins the optimistic concurrency check. Retry-on-conflict is this
// collaborator's policy; the engine and the aggregate never retry.
// Domain errors are permanent and returned as-is.
func (r *Repository) Execute(ctx context.Context, id ID, command func(*Order) error) error {
	operation := func() error {
		o, version, err := r.Load(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}

		if err := command(o); err != nil {
			return backoff.Permanent(err)
		}

		if err := r.Save(ctx, o, version); err != nil {
			if errors.Cause(err) == eventstore.ErrVersionConflict {
				r.logger.Debug("Version conflict, reloading and retrying", ordertrack.LogFields{
					"order_id": id,
					"version":  version,
				})
				return err
			}

			return backoff.Permanent(err)
		}

		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)

	return backoff.Retry(operation, policy)
}
