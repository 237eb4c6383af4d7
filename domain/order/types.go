package order

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack"
	"github.com/trackpay/ordertrack/domain/money"
)

type ID string

func NewID() ID {
	return ID(ordertrack.NewUUID())
}

func (id ID) String() string {
	return string(id)
}

type BusinessName string

type ContactPerson string

type BusinessAddress struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	Town         string `json:"town"`
	County       string `json:"county"`
	Postcode     string `json:"postcode"`
	CountryCode  string `json:"countryCode"`
}

// PaymentStatus is the order's settlement state. UNPAID is initial,
// PART_PAID means some but not all of the amount was received and PAID is
// terminal.
type PaymentStatus string

const (
	Unpaid   PaymentStatus = "UNPAID"
	PartPaid PaymentStatus = "PART_PAID"
	Paid     PaymentStatus = "PAID"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch status := PaymentStatus(s); status {
	case Unpaid, PartPaid, Paid:
		return status, nil
	}

	return "", errors.Errorf("unknown payment status %q", s)
}

type PaymentID string

func NewPaymentID() PaymentID {
	return PaymentID(ordertrack.NewUUID())
}

func (id PaymentID) String() string {
	return string(id)
}

type PaymentType string

// Payment is one received payment. Immutable once appended to the order;
// payments are never removed or reordered.
type Payment struct {
	ID         PaymentID
	PayeeName  string
	Amount     money.Money
	Type       PaymentType
	ReceivedAt time.Time
}
