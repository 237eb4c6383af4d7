// Package money holds a monetary amount as integer minor units plus a
// currency code. Arithmetic is exact; there is no floating point anywhere.
package money

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEmptyCurrency    = errors.New("empty currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money is an immutable amount of a single currency.
// The zero value is no money at all; use New or Zero.
type Money struct {
	amount   int64
	currency string
}

// New creates an amount of the given currency, expressed in minor units
// (pennies, cents). Negative amounts are representable; whether they are
// acceptable is a domain concern, not a money one.
func New(amount int64, currency string) (Money, error) {
	if currency == "" {
		return Money{}, ErrEmptyCurrency
	}

	return Money{
		amount:   amount,
		currency: strings.ToUpper(currency),
	}, nil
}

// Zero returns a zero amount of the given currency.
func Zero(currency string) Money {
	return Money{amount: 0, currency: strings.ToUpper(currency)}
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Equals is structural: same amount and same currency.
func (m Money) Equals(other Money) bool {
	return m == other
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return false, err
	}

	return m.amount > other.amount, nil
}

func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return false, err
	}

	return m.amount >= other.amount, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}

func (m Money) assertSameCurrency(other Money) error {
	if m.currency != other.currency {
		return errors.Wrapf(ErrCurrencyMismatch, "%s vs %s", m.currency, other.currency)
	}

	return nil
}
