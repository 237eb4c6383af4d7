package order

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack/components/esource"
	"github.com/trackpay/ordertrack/domain/money"
)

// Logical event names. These are the stable identity of each event in the
// stored log and must never change; schema evolution within an event is
// handled by upcasters instead.
const (
	OrderWasCreatedEventName    = "OrderWasCreated"
	OrderWasPaidEventName       = "OrderWasPaid"
	PaymentWasReceivedEventName = "PaymentWasReceived"
)

type OrderWasCreated struct {
	OrderID         ID
	BusinessName    BusinessName
	BusinessAddress BusinessAddress
	ContactPerson   ContactPerson
	Amount          money.Money

	// PaymentStatus is only non-empty for histories upcasted from the
	// legacy isPaid flag; empty means the order starts UNPAID.
	PaymentStatus PaymentStatus

	OccurredOn time.Time
}

func (OrderWasCreated) EventName() string {
	return OrderWasCreatedEventName
}

func (e OrderWasCreated) EventOccurredOn() time.Time {
	return e.OccurredOn
}

// OrderWasPaid has no payload of its own; the order identity and the paid
// date are carried by the envelope.
type OrderWasPaid struct {
	OccurredOn time.Time
}

func (OrderWasPaid) EventName() string {
	return OrderWasPaidEventName
}

func (e OrderWasPaid) EventOccurredOn() time.Time {
	return e.OccurredOn
}

type PaymentWasReceived struct {
	PaymentID  PaymentID
	PayeeName  string
	Amount     money.Money
	Type       PaymentType
	OccurredOn time.Time
}

func (PaymentWasReceived) EventName() string {
	return PaymentWasReceivedEventName
}

func (e PaymentWasReceived) EventOccurredOn() time.Time {
	return e.OccurredOn
}

type moneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type orderWasCreatedPayload struct {
	BusinessName    string          `json:"businessName"`
	BusinessAddress BusinessAddress `json:"businessAddress"`
	ContactPerson   string          `json:"contactPerson"`
	Amount          moneyPayload    `json:"amount"`
	PaymentStatus   string          `json:"paymentStatus,omitempty"`

	// IsPaid is the pre-2019 schema's flag, retained by the upcaster for
	// consumers still reading it. Replay only looks at PaymentStatus.
	IsPaid *bool `json:"isPaid,omitempty"`
}

type paymentWasReceivedPayload struct {
	PaymentID string       `json:"paymentId"`
	PayeeName string       `json:"payeeName"`
	Amount    moneyPayload `json:"amount"`
	Type      string       `json:"type"`
}

func decodePayload(payload esource.Payload, v interface{}) error {
	marshaled, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "cannot re-marshal payload")
	}

	return json.Unmarshal(marshaled, v)
}

func encodePayload(v interface{}) (esource.Payload, error) {
	marshaled, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal payload")
	}

	payload := esource.Payload{}
	if err := json.Unmarshal(marshaled, &payload); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal payload to raw form")
	}

	return payload, nil
}

func decodeOrderWasCreated(raw esource.RawEvent) (esource.Event, error) {
	var p orderWasCreatedPayload
	if err := decodePayload(raw.Payload, &p); err != nil {
		return nil, err
	}

	if p.BusinessName == "" {
		return nil, errors.New("missing businessName")
	}
	if p.ContactPerson == "" {
		return nil, errors.New("missing contactPerson")
	}

	amount, err := money.New(p.Amount.Amount, p.Amount.Currency)
	if err != nil {
		return nil, errors.Wrap(err, "invalid amount")
	}

	var status PaymentStatus
	if p.PaymentStatus != "" {
		status, err = ParsePaymentStatus(p.PaymentStatus)
		if err != nil {
			return nil, err
		}
	}

	return OrderWasCreated{
		OrderID:         ID(raw.AggregateID),
		BusinessName:    BusinessName(p.BusinessName),
		BusinessAddress: p.BusinessAddress,
		ContactPerson:   ContactPerson(p.ContactPerson),
		Amount:          amount,
		PaymentStatus:   status,
		OccurredOn:      raw.OccurredOn,
	}, nil
}

func decodeOrderWasPaid(raw esource.RawEvent) (esource.Event, error) {
	return OrderWasPaid{OccurredOn: raw.OccurredOn}, nil
}

func decodePaymentWasReceived(raw esource.RawEvent) (esource.Event, error) {
	var p paymentWasReceivedPayload
	if err := decodePayload(raw.Payload, &p); err != nil {
		return nil, err
	}

	if p.PaymentID == "" {
		return nil, errors.New("missing paymentId")
	}

	amount, err := money.New(p.Amount.Amount, p.Amount.Currency)
	if err != nil {
		return nil, errors.Wrap(err, "invalid amount")
	}

	return PaymentWasReceived{
		PaymentID:  PaymentID(p.PaymentID),
		PayeeName:  p.PayeeName,
		Amount:     amount,
		Type:       PaymentType(p.Type),
		OccurredOn: raw.OccurredOn,
	}, nil
}

// encodeEvent builds the stored payload for a freshly emitted event.
func encodeEvent(event esource.Event) (esource.Payload, error) {
	switch e := event.(type) {
	case OrderWasCreated:
		return encodePayload(orderWasCreatedPayload{
			BusinessName:    string(e.BusinessName),
			BusinessAddress: e.BusinessAddress,
			ContactPerson:   string(e.ContactPerson),
			Amount: moneyPayload{
				Amount:   e.Amount.Amount(),
				Currency: e.Amount.Currency(),
			},
			PaymentStatus: string(e.PaymentStatus),
		})
	case OrderWasPaid:
		return esource.Payload{}, nil
	case PaymentWasReceived:
		return encodePayload(paymentWasReceivedPayload{
			PaymentID: string(e.PaymentID),
			PayeeName: e.PayeeName,
			Amount: moneyPayload{
				Amount:   e.Amount.Amount(),
				Currency: e.Amount.Currency(),
			},
			Type: string(e.Type),
		})
	default:
		return nil, errors.Errorf("cannot encode unknown event %q", event.EventName())
	}
}
