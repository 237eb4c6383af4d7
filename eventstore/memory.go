package eventstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack/components/esource"
)

// Memory is an in-memory EventStore. Used in tests and in single-process
// deployments that don't need durability.
type Memory struct {
	lock    sync.RWMutex
	streams map[string][]esource.RawEvent
}

func NewMemory() *Memory {
	return &Memory{
		streams: map[string][]esource.RawEvent{},
	}
}

func (m *Memory) Load(ctx context.Context, aggregateID string) ([]esource.RawEvent, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	stream := m.streams[aggregateID]

	history := make([]esource.RawEvent, len(stream))
	copy(history, stream)

	return history, nil
}

func (m *Memory) Append(ctx context.Context, aggregateID string, expectedVersion int, events []esource.RawEvent) error {
	if err := validateAppend(aggregateID, expectedVersion, events); err != nil {
		return errors.Wrap(err, "invalid append")
	}
	if len(events) == 0 {
		return nil
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	stream := m.streams[aggregateID]
	if len(stream) != expectedVersion {
		return errors.Wrapf(
			ErrVersionConflict,
			"expected version %d, stream is at %d", expectedVersion, len(stream),
		)
	}

	for _, event := range events {
		event.Version = len(stream) + 1
		stream = append(stream, event)
	}

	m.streams[aggregateID] = stream

	return nil
}
