package order

import "github.com/pkg/errors"

var (
	ErrNotFound   = errors.New("order not found")
	ErrNotCreated = errors.New("order was not created")

	ErrEmptyID            = errors.New("empty order ID")
	ErrEmptyBusinessName  = errors.New("empty business name")
	ErrEmptyContactPerson = errors.New("empty contact person")
	ErrEmptyPaymentID     = errors.New("empty payment ID")

	ErrOrderAmountMustBeGreaterThanZero = errors.New("order amount must be greater than zero")
	ErrOrderAmountMustNotBeNegative     = errors.New("order amount must not be negative")

	ErrPaymentAmountMustBeGreaterThanZero         = errors.New("payment amount must be greater than zero")
	ErrPaymentAmountMustNotBeNegative             = errors.New("payment amount must not be negative")
	ErrPaymentAmountMustNotExceedTotalOrderAmount = errors.New("payment amount must not exceed total order amount")
)
