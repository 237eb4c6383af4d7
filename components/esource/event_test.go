package esource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackpay/ordertrack/components/esource"
)

func TestRecorder(t *testing.T) {
	r := &esource.Recorder{}
	assert.False(t, r.HasPendingEvents())

	r.RecordThat(deposited{amount: 1})
	r.RecordThat(deposited{amount: 2})
	assert.True(t, r.HasPendingEvents())

	events := r.PopEvents()
	require.Len(t, events, 2)
	assert.Equal(t, deposited{amount: 1}, events[0])
	assert.Equal(t, deposited{amount: 2}, events[1])

	assert.False(t, r.HasPendingEvents())
	assert.Empty(t, r.PopEvents())
}

func TestRecorder_nil_event(t *testing.T) {
	r := &esource.Recorder{}
	r.RecordThat(nil)

	assert.False(t, r.HasPendingEvents())
}
