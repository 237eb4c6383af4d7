package order

import (
	"github.com/trackpay/ordertrack/components/esource"
)

// IsPaidToPaymentStatus projects the legacy boolean isPaid flag into the
// paymentStatus field that replaced it in September 2019.
//
// The flag itself stays in the payload for any consumer still reading it.
// Payloads without the flag pass through unchanged, and re-running the
// transform over an already-upcasted payload derives the same status again,
// so the upcaster is idempotent.
type IsPaidToPaymentStatus struct{}

func (IsPaidToPaymentStatus) Supports(eventName string) bool {
	return eventName == OrderWasCreatedEventName || eventName == OrderWasPaidEventName
}

func (IsPaidToPaymentStatus) Upcast(payload esource.Payload) (esource.Payload, error) {
	isPaid, ok := payload["isPaid"].(bool)
	if !ok {
		return payload, nil
	}

	if isPaid {
		payload["paymentStatus"] = string(Paid)
	} else {
		payload["paymentStatus"] = string(Unpaid)
	}

	return payload, nil
}

// Upcasters returns the order's upcasting pipeline, in the chronological
// order the schema changes were introduced.
func Upcasters() esource.Pipeline {
	return esource.Pipeline{
		IsPaidToPaymentStatus{},
	}
}
