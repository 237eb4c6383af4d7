package eventstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackpay/ordertrack/components/esource"
	"github.com/trackpay/ordertrack/eventstore"
)

func newRawEvent(aggregateID, name string) esource.RawEvent {
	return esource.RawEvent{
		ID:          name + "-id",
		AggregateID: aggregateID,
		Name:        name,
		Payload:     esource.Payload{},
		OccurredOn:  time.Date(2019, time.September, 9, 12, 20, 0, 0, time.UTC),
	}
}

func TestMemory_Append_and_Load(t *testing.T) {
	store := eventstore.NewMemory()
	ctx := context.Background()

	err := store.Append(ctx, "order-1", 0, []esource.RawEvent{
		newRawEvent("order-1", "OrderWasCreated"),
	})
	require.NoError(t, err)

	err = store.Append(ctx, "order-1", 1, []esource.RawEvent{
		newRawEvent("order-1", "PaymentWasReceived"),
		newRawEvent("order-1", "OrderWasPaid"),
	})
	require.NoError(t, err)

	history, err := store.Load(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, "OrderWasCreated", history[0].Name)
	assert.Equal(t, "PaymentWasReceived", history[1].Name)
	assert.Equal(t, "OrderWasPaid", history[2].Name)

	for i, event := range history {
		assert.Equal(t, i+1, event.Version)
	}
}

func TestMemory_Load_unknown_aggregate(t *testing.T) {
	store := eventstore.NewMemory()

	history, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemory_Append_version_conflict(t *testing.T) {
	store := eventstore.NewMemory()
	ctx := context.Background()

	err := store.Append(ctx, "order-1", 0, []esource.RawEvent{
		newRawEvent("order-1", "OrderWasCreated"),
	})
	require.NoError(t, err)

	// a second writer raced on the same observed version
	err = store.Append(ctx, "order-1", 0, []esource.RawEvent{
		newRawEvent("order-1", "OrderWasPaid"),
	})
	require.Error(t, err)
	assert.Equal(t, eventstore.ErrVersionConflict, errors.Cause(err))

	history, err := store.Load(ctx, "order-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMemory_Append_validates_envelopes(t *testing.T) {
	store := eventstore.NewMemory()

	invalid := esource.RawEvent{
		AggregateID: "someone-else",
		Payload:     esource.Payload{},
	}

	err := store.Append(context.Background(), "order-1", 0, []esource.RawEvent{invalid})
	require.Error(t, err)

	// every envelope problem is reported, not just the first
	assert.Contains(t, err.Error(), "has no ID")
	assert.Contains(t, err.Error(), "has no name")
	assert.Contains(t, err.Error(), "belongs to aggregate")
	assert.Contains(t, err.Error(), "has no occurred-on timestamp")
}

func TestMemory_Load_returns_copy(t *testing.T) {
	store := eventstore.NewMemory()
	ctx := context.Background()

	err := store.Append(ctx, "order-1", 0, []esource.RawEvent{
		newRawEvent("order-1", "OrderWasCreated"),
	})
	require.NoError(t, err)

	history, err := store.Load(ctx, "order-1")
	require.NoError(t, err)
	history[0].Name = "Tampered"

	reloaded, err := store.Load(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "OrderWasCreated", reloaded[0].Name)
}
