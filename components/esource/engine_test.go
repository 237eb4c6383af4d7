package esource_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackpay/ordertrack/components/esource"
)

type account struct {
	balance int
}

type deposited struct {
	amount     int
	occurredOn time.Time
}

func (deposited) EventName() string {
	return "Deposited"
}

func (e deposited) EventOccurredOn() time.Time {
	return e.occurredOn
}

type withdrawn struct {
	amount     int
	occurredOn time.Time
}

func (withdrawn) EventName() string {
	return "Withdrawn"
}

func (e withdrawn) EventOccurredOn() time.Time {
	return e.occurredOn
}

func reduceAccount(state account, event esource.Event) (account, error) {
	switch e := event.(type) {
	case deposited:
		state.balance += e.amount
	case withdrawn:
		state.balance -= e.amount
	default:
		return state, esource.MissingReducerError{EventName: event.EventName()}
	}

	return state, nil
}

func newAccountEngine(t *testing.T) *esource.Engine[account] {
	t.Helper()

	engine := esource.NewEngine[account](
		func() account { return account{} },
		reduceAccount,
	)
	engine.RegisterDecoder("Deposited", func(raw esource.RawEvent) (esource.Event, error) {
		amount, ok := raw.Payload["amount"].(int)
		if !ok {
			return nil, errors.New("amount is not an int")
		}
		return deposited{amount: amount, occurredOn: raw.OccurredOn}, nil
	})
	engine.RegisterDecoder("Withdrawn", func(raw esource.RawEvent) (esource.Event, error) {
		amount, ok := raw.Payload["amount"].(int)
		if !ok {
			return nil, errors.New("amount is not an int")
		}
		return withdrawn{amount: amount, occurredOn: raw.OccurredOn}, nil
	})

	return engine
}

func TestEngine_Replay(t *testing.T) {
	engine := newAccountEngine(t)

	history := []esource.RawEvent{
		{Name: "Deposited", Version: 1, Payload: esource.Payload{"amount": 15}},
		{Name: "Withdrawn", Version: 2, Payload: esource.Payload{"amount": 3}},
		{Name: "Deposited", Version: 3, Payload: esource.Payload{"amount": 8}},
	}

	state, err := engine.Replay(history)
	require.NoError(t, err)
	assert.Equal(t, 20, state.balance)
}

func TestEngine_Replay_empty_history(t *testing.T) {
	engine := newAccountEngine(t)

	state, err := engine.Replay(nil)
	require.NoError(t, err)
	assert.Equal(t, account{}, state)
}

func TestEngine_Replay_is_deterministic(t *testing.T) {
	engine := newAccountEngine(t)

	history := []esource.RawEvent{
		{Name: "Deposited", Version: 1, Payload: esource.Payload{"amount": 100}},
		{Name: "Withdrawn", Version: 2, Payload: esource.Payload{"amount": 60}},
	}

	first, err := engine.Replay(history)
	require.NoError(t, err)

	second, err := engine.Replay(history)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Replay_missing_reducer(t *testing.T) {
	engine := newAccountEngine(t)

	history := []esource.RawEvent{
		{Name: "Deposited", Version: 1, Payload: esource.Payload{"amount": 15}},
		{Name: "Frozen", Version: 2, Payload: esource.Payload{}},
	}

	_, err := engine.Replay(history)
	require.Error(t, err)

	var missing esource.MissingReducerError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Frozen", missing.EventName)
}

func TestEngine_Replay_malformed_payload(t *testing.T) {
	engine := newAccountEngine(t)

	history := []esource.RawEvent{
		{Name: "Deposited", Version: 1, Payload: esource.Payload{"amount": "a lot"}},
	}

	_, err := engine.Replay(history)
	require.Error(t, err)

	var malformed esource.MalformedPayloadError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Deposited", malformed.EventName)
}

func TestEngine_Apply(t *testing.T) {
	engine := newAccountEngine(t)

	state, err := engine.Apply(account{balance: 10}, withdrawn{amount: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, state.balance)
}

func TestEngine_Apply_unknown_event(t *testing.T) {
	engine := newAccountEngine(t)

	_, err := engine.Apply(account{}, unknownEvent{})

	var missing esource.MissingReducerError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Unknown", missing.EventName)
}

type unknownEvent struct{}

func (unknownEvent) EventName() string {
	return "Unknown"
}

func (unknownEvent) EventOccurredOn() time.Time {
	return time.Time{}
}

func TestNewEngine_missing_dependencies(t *testing.T) {
	assert.Panics(t, func() {
		esource.NewEngine[account](nil, reduceAccount)
	})
	assert.Panics(t, func() {
		esource.NewEngine[account](func() account { return account{} }, nil)
	})
}

func TestEngine_RegisterDecoder_duplicate(t *testing.T) {
	engine := newAccountEngine(t)

	assert.Panics(t, func() {
		engine.RegisterDecoder("Deposited", func(raw esource.RawEvent) (esource.Event, error) {
			return nil, nil
		})
	})
}
