package eventstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trackpay/ordertrack/components/esource"
)

// PrometheusMetricsBuilder decorates event stores with Prometheus metrics.
type PrometheusMetricsBuilder struct {
	// PrometheusRegistry may be filled with a pre-existing Prometheus registry, or left empty for the default registry.
	PrometheusRegistry *prometheus.Registry

	Namespace string
	Subsystem string
}

func NewPrometheusMetricsBuilder(registry *prometheus.Registry, namespace string, subsystem string) PrometheusMetricsBuilder {
	return PrometheusMetricsBuilder{
		PrometheusRegistry: registry,
		Namespace:          namespace,
		Subsystem:          subsystem,
	}
}

// DecorateEventStore wraps the underlying store with append/load counters.
func (b PrometheusMetricsBuilder) DecorateEventStore(store EventStore) (EventStore, error) {
	d := &storeMetricsDecorator{store: store}
	var err error

	d.appendedEvents, err = b.registerCounterVec(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: b.Namespace,
			Subsystem: b.Subsystem,
			Name:      "events_appended_total",
			Help:      "Events appended to the log, per logical event name",
		},
		[]string{"event_name"},
	))
	if err != nil {
		return nil, errors.Wrap(err, "could not register appended events metric")
	}

	d.versionConflicts, err = b.registerCounter(prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: b.Namespace,
			Subsystem: b.Subsystem,
			Name:      "append_conflicts_total",
			Help:      "Appends rejected by the optimistic concurrency check",
		},
	))
	if err != nil {
		return nil, errors.Wrap(err, "could not register conflicts metric")
	}

	d.loadedEvents, err = b.registerCounter(prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: b.Namespace,
			Subsystem: b.Subsystem,
			Name:      "events_loaded_total",
			Help:      "Events read back from the log for replay",
		},
	))
	if err != nil {
		return nil, errors.Wrap(err, "could not register loaded events metric")
	}

	return d, nil
}

func (b PrometheusMetricsBuilder) registerCounter(c prometheus.Counter) (prometheus.Counter, error) {
	err := b.registry().Register(c)
	if err == nil {
		return c, nil
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return alreadyRegistered.ExistingCollector.(prometheus.Counter), nil
	}

	return nil, err
}

func (b PrometheusMetricsBuilder) registerCounterVec(c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := b.registry().Register(c)
	if err == nil {
		return c, nil
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return alreadyRegistered.ExistingCollector.(*prometheus.CounterVec), nil
	}

	return nil, err
}

func (b PrometheusMetricsBuilder) registry() prometheus.Registerer {
	if b.PrometheusRegistry != nil {
		return b.PrometheusRegistry
	}

	return prometheus.DefaultRegisterer
}

type storeMetricsDecorator struct {
	store EventStore

	appendedEvents   *prometheus.CounterVec
	versionConflicts prometheus.Counter
	loadedEvents     prometheus.Counter
}

func (d *storeMetricsDecorator) Load(ctx context.Context, aggregateID string) ([]esource.RawEvent, error) {
	history, err := d.store.Load(ctx, aggregateID)
	if err != nil {
		return nil, err
	}

	d.loadedEvents.Add(float64(len(history)))

	return history, nil
}

func (d *storeMetricsDecorator) Append(ctx context.Context, aggregateID string, expectedVersion int, events []esource.RawEvent) error {
	err := d.store.Append(ctx, aggregateID, expectedVersion, events)
	if err != nil {
		if errors.Cause(err) == ErrVersionConflict {
			d.versionConflicts.Inc()
		}
		return err
	}

	for _, event := range events {
		d.appendedEvents.WithLabelValues(event.Name).Inc()
	}

	return nil
}
