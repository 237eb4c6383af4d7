// Package order holds the order aggregate: a consistency boundary whose
// state is derived solely from its own event history.
//
// Commands validate business invariants against current state before
// emitting events, all-or-nothing: a rejected command changes no state and
// emits nothing. Replay applies no validation at all, it trusts the log.
package order

import (
	"time"

	"github.com/trackpay/ordertrack/components/esource"
	"github.com/trackpay/ordertrack/domain/money"
)

// nowFunc is swapped in tests to freeze event timestamps.
var nowFunc = time.Now

type Order struct {
	esource.Recorder

	id              ID
	businessName    BusinessName
	businessAddress BusinessAddress
	contactPerson   ContactPerson
	amount          money.Money
	paymentStatus   PaymentStatus
	datePaid        time.Time
	payments        []Payment
}

// NewEngine builds the replay engine for orders, with every event decoder
// registered under its logical name.
func NewEngine() *esource.Engine[*Order] {
	engine := esource.NewEngine[*Order](
		func() *Order { return &Order{} },
		reduce,
	)

	engine.RegisterDecoder(OrderWasCreatedEventName, decodeOrderWasCreated)
	engine.RegisterDecoder(OrderWasPaidEventName, decodeOrderWasPaid)
	engine.RegisterDecoder(PaymentWasReceivedEventName, decodePaymentWasReceived)

	return engine
}

func (o *Order) ID() ID {
	return o.id
}

func (o *Order) BusinessName() BusinessName {
	return o.businessName
}

func (o *Order) BusinessAddress() BusinessAddress {
	return o.businessAddress
}

func (o *Order) ContactPerson() ContactPerson {
	return o.contactPerson
}

func (o *Order) Amount() money.Money {
	return o.amount
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// DatePaid returns when the order became PAID. The date is set at most once;
// ok is false while the order is not yet paid.
func (o *Order) DatePaid() (time.Time, bool) {
	return o.datePaid, !o.datePaid.IsZero()
}

// Payments returns the received payments in insertion order.
func (o *Order) Payments() []Payment {
	payments := make([]Payment, len(o.payments))
	copy(payments, o.payments)

	return payments
}

// TotalPaid is the running total of all received payments.
func (o *Order) TotalPaid() (money.Money, error) {
	total := money.Zero(o.amount.Currency())

	var err error
	for _, payment := range o.payments {
		total, err = total.Add(payment.Amount)
		if err != nil {
			return money.Money{}, err
		}
	}

	return total, nil
}

// Create validates and creates a new order, recording OrderWasCreated.
//
// Zero and negative amounts are rejected with distinct errors; zero is
// checked first, so a zero amount is reported as "must be greater than
// zero", never as negative.
func Create(
	id ID,
	businessName BusinessName,
	businessAddress BusinessAddress,
	contactPerson ContactPerson,
	amount money.Money,
) (*Order, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if businessName == "" {
		return nil, ErrEmptyBusinessName
	}
	if contactPerson == "" {
		return nil, ErrEmptyContactPerson
	}
	if amount.IsZero() {
		return nil, ErrOrderAmountMustBeGreaterThanZero
	}
	if amount.IsNegative() {
		return nil, ErrOrderAmountMustNotBeNegative
	}

	o := &Order{}

	return o, o.emit(OrderWasCreated{
		OrderID:         id,
		BusinessName:    businessName,
		BusinessAddress: businessAddress,
		ContactPerson:   contactPerson,
		Amount:          amount,
		OccurredOn:      nowFunc(),
	})
}

// Pay explicitly marks the order settled, regardless of the payment total.
// Used when an order is paid outside of recorded payments.
func (o *Order) Pay() error {
	if o.id == "" {
		return ErrNotCreated
	}

	return o.emit(OrderWasPaid{OccurredOn: nowFunc()})
}

// ReceivePayment records one received payment against the order.
func (o *Order) ReceivePayment(paymentID PaymentID, payeeName string, amount money.Money, paymentType PaymentType) error {
	if o.id == "" {
		return ErrNotCreated
	}
	if paymentID == "" {
		return ErrEmptyPaymentID
	}
	if amount.IsZero() {
		return ErrPaymentAmountMustBeGreaterThanZero
	}
	if amount.IsNegative() {
		return ErrPaymentAmountMustNotBeNegative
	}

	total, err := o.TotalPaid()
	if err != nil {
		return err
	}

	newTotal, err := total.Add(amount)
	if err != nil {
		return err
	}

	exceeds, err := newTotal.GreaterThan(o.amount)
	if err != nil {
		return err
	}
	if exceeds {
		return ErrPaymentAmountMustNotExceedTotalOrderAmount
	}

	return o.emit(PaymentWasReceived{
		PaymentID:  paymentID,
		PayeeName:  payeeName,
		Amount:     amount,
		Type:       paymentType,
		OccurredOn: nowFunc(),
	})
}

// emit applies a validated event to the in-memory state and records it for
// persistence.
func (o *Order) emit(event esource.Event) error {
	if _, err := reduce(o, event); err != nil {
		return err
	}

	o.RecordThat(event)

	return nil
}

// reduce is the single fold function covering every order event. The
// mapping is closed: an event variant without a case here fails replay with
// MissingReducerError instead of being silently skipped.
func reduce(o *Order, event esource.Event) (*Order, error) {
	switch e := event.(type) {
	case OrderWasCreated:
		o.applyOrderWasCreated(e)
	case OrderWasPaid:
		o.applyOrderWasPaid(e)
	case PaymentWasReceived:
		return o, o.applyPaymentWasReceived(e)
	default:
		return o, esource.MissingReducerError{EventName: event.EventName()}
	}

	return o, nil
}

func (o *Order) applyOrderWasCreated(e OrderWasCreated) {
	o.id = e.OrderID
	o.businessName = e.BusinessName
	o.businessAddress = e.BusinessAddress
	o.contactPerson = e.ContactPerson
	o.amount = e.Amount

	o.paymentStatus = Unpaid
	if e.PaymentStatus != "" {
		// upcasted from the legacy isPaid flag; such histories carry no paid date
		o.paymentStatus = e.PaymentStatus
	}
}

func (o *Order) applyOrderWasPaid(e OrderWasPaid) {
	o.paymentStatus = Paid

	if o.datePaid.IsZero() {
		o.datePaid = e.OccurredOn
	}
}

func (o *Order) applyPaymentWasReceived(e PaymentWasReceived) error {
	o.payments = append(o.payments, Payment{
		ID:         e.PaymentID,
		PayeeName:  e.PayeeName,
		Amount:     e.Amount,
		Type:       e.Type,
		ReceivedAt: e.OccurredOn,
	})

	if o.paymentStatus == Paid {
		// PAID is terminal
		return nil
	}

	// a mismatched payment currency can only come from a corrupted log, so it
	// is a replay-integrity failure, not a domain error
	total, err := o.TotalPaid()
	if err != nil {
		return esource.MalformedPayloadError{EventName: e.EventName(), Err: err}
	}

	reached, err := total.GreaterThanOrEqual(o.amount)
	if err != nil {
		return esource.MalformedPayloadError{EventName: e.EventName(), Err: err}
	}

	switch {
	case reached:
		o.paymentStatus = Paid
		if o.datePaid.IsZero() {
			o.datePaid = e.OccurredOn
		}
	case !total.IsZero():
		o.paymentStatus = PartPaid
	}

	return nil
}
