package eventstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack"
	"github.com/trackpay/ordertrack/components/esource"
)

// Kafka decorates an EventStore, publishing every successfully appended
// event to a Kafka topic so downstream consumers (projections, search
// indexers) can follow the log.
//
// Publishing happens after the append committed. A publish failure is
// surfaced to the caller but the events stay appended; the log is the source
// of truth, the topic is a best-effort feed.
type Kafka struct {
	store    EventStore
	producer sarama.SyncProducer
	topic    string
	logger   ordertrack.LoggerAdapter
}

func NewKafka(store EventStore, producer sarama.SyncProducer, topic string, logger ordertrack.LoggerAdapter) *Kafka {
	if store == nil {
		panic("missing event store")
	}
	if producer == nil {
		panic("missing producer")
	}
	if topic == "" {
		panic("empty topic")
	}
	if logger == nil {
		logger = ordertrack.NopLogger{}
	}

	return &Kafka{
		store:    store,
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// NewSimpleSyncKafka builds a Kafka decorator with a default synchronous producer.
func NewSimpleSyncKafka(store EventStore, brokers []string, topic string, logger ordertrack.LoggerAdapter) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionGZIP
	config.Producer.Flush.Frequency = 500 * time.Millisecond
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create producer")
	}

	return NewKafka(store, producer, topic, logger), nil
}

func (k *Kafka) Load(ctx context.Context, aggregateID string) ([]esource.RawEvent, error) {
	return k.store.Load(ctx, aggregateID)
}

func (k *Kafka) Append(ctx context.Context, aggregateID string, expectedVersion int, events []esource.RawEvent) error {
	if err := k.store.Append(ctx, aggregateID, expectedVersion, events); err != nil {
		return err
	}

	messages := make([]*sarama.ProducerMessage, 0, len(events))

	for i, event := range events {
		// the store numbered its own copies; the append succeeded at
		// expectedVersion, so the assigned sequence numbers are known
		event.Version = expectedVersion + i + 1

		marshaled, err := json.Marshal(event)
		if err != nil {
			return errors.Wrapf(err, "cannot marshal event %s", event.ID)
		}

		messages = append(messages, &sarama.ProducerMessage{
			Topic: k.topic,
			Key:   sarama.StringEncoder(aggregateID),
			Value: sarama.ByteEncoder(marshaled),
		})
	}

	if err := k.producer.SendMessages(messages); err != nil {
		k.logger.Error("Cannot publish appended events", err, ordertrack.LogFields{
			"aggregate_id": aggregateID,
			"topic":        k.topic,
		})
		return errors.Wrap(err, "events appended but not published")
	}

	k.logger.Trace("Published appended events", ordertrack.LogFields{
		"aggregate_id": aggregateID,
		"events":       len(events),
	})

	return nil
}
