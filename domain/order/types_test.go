package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackpay/ordertrack/domain/order"
)

func TestParsePaymentStatus(t *testing.T) {
	for _, valid := range []string{"UNPAID", "PART_PAID", "PAID"} {
		status, err := order.ParsePaymentStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(status))
	}

	_, err := order.ParsePaymentStatus("REFUNDED")
	assert.Error(t, err)

	_, err = order.ParsePaymentStatus("paid")
	assert.Error(t, err)
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, order.NewID(), order.NewID())
	assert.NotEmpty(t, order.NewID().String())
}

func TestNewPaymentID(t *testing.T) {
	assert.NotEqual(t, order.NewPaymentID(), order.NewPaymentID())
}
