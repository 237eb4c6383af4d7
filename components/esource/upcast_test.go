package esource_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackpay/ordertrack/components/esource"
)

type addFieldUpcaster struct {
	eventName string
	field     string
	value     interface{}
}

func (u addFieldUpcaster) Supports(eventName string) bool {
	return eventName == u.eventName
}

func (u addFieldUpcaster) Upcast(payload esource.Payload) (esource.Payload, error) {
	payload[u.field] = u.value
	return payload, nil
}

type failingUpcaster struct{}

func (failingUpcaster) Supports(eventName string) bool {
	return true
}

func (failingUpcaster) Upcast(payload esource.Payload) (esource.Payload, error) {
	return nil, errors.New("broken transform")
}

func TestPipeline_Upcast_applies_in_order(t *testing.T) {
	pipeline := esource.Pipeline{
		addFieldUpcaster{eventName: "Deposited", field: "a", value: 1},
		addFieldUpcaster{eventName: "Deposited", field: "a", value: 2},
	}

	raw := esource.RawEvent{Name: "Deposited", Payload: esource.Payload{}}

	upcasted, err := pipeline.Upcast(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, upcasted.Payload["a"])
}

func TestPipeline_Upcast_skips_unsupported_events(t *testing.T) {
	pipeline := esource.Pipeline{
		addFieldUpcaster{eventName: "Deposited", field: "a", value: 1},
	}

	raw := esource.RawEvent{Name: "Withdrawn", Payload: esource.Payload{"amount": 3}}

	upcasted, err := pipeline.Upcast(raw)
	require.NoError(t, err)
	assert.Equal(t, esource.Payload{"amount": 3}, upcasted.Payload)
}

func TestPipeline_Upcast_does_not_mutate_stored_payload(t *testing.T) {
	pipeline := esource.Pipeline{
		addFieldUpcaster{eventName: "Deposited", field: "a", value: 1},
	}

	stored := esource.Payload{"amount": 3}
	raw := esource.RawEvent{Name: "Deposited", Payload: stored}

	_, err := pipeline.Upcast(raw)
	require.NoError(t, err)

	assert.Equal(t, esource.Payload{"amount": 3}, stored)
}

func TestPipeline_Upcast_failure_is_malformed_payload(t *testing.T) {
	pipeline := esource.Pipeline{failingUpcaster{}}

	_, err := pipeline.Upcast(esource.RawEvent{Name: "Deposited", Payload: esource.Payload{}})
	require.Error(t, err)

	var malformed esource.MalformedPayloadError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Deposited", malformed.EventName)
}

func TestPipeline_UpcastAll_preserves_order(t *testing.T) {
	pipeline := esource.Pipeline{
		addFieldUpcaster{eventName: "Deposited", field: "upcasted", value: true},
	}

	history := []esource.RawEvent{
		{Name: "Deposited", Version: 1, Payload: esource.Payload{}},
		{Name: "Withdrawn", Version: 2, Payload: esource.Payload{}},
	}

	upcasted, err := pipeline.UpcastAll(history)
	require.NoError(t, err)
	require.Len(t, upcasted, 2)

	assert.Equal(t, 1, upcasted[0].Version)
	assert.Equal(t, true, upcasted[0].Payload["upcasted"])
	assert.Equal(t, 2, upcasted[1].Version)
	assert.NotContains(t, upcasted[1].Payload, "upcasted")
}

func TestPayload_Copy(t *testing.T) {
	original := esource.Payload{"a": 1}

	copied := original.Copy()
	copied["b"] = 2

	assert.NotContains(t, original, "b")
	assert.Nil(t, esource.Payload(nil).Copy())
}
