package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/trackpay/ordertrack"
	"github.com/trackpay/ordertrack/domain/money"
	"github.com/trackpay/ordertrack/domain/order"
	"github.com/trackpay/ordertrack/eventstore"
)

type handlers struct {
	repo   *order.Repository
	logger ordertrack.LoggerAdapter
}

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createOrderRequest struct {
	BusinessName    string                `json:"businessName"`
	BusinessAddress order.BusinessAddress `json:"businessAddress"`
	ContactPerson   string                `json:"contactPerson"`
	Amount          moneyJSON             `json:"amount"`
}

type receivePaymentRequest struct {
	PayeeName string    `json:"payeeName"`
	Amount    moneyJSON `json:"amount"`
	Type      string    `json:"type"`
}

type paymentView struct {
	PaymentID  string    `json:"paymentId"`
	PayeeName  string    `json:"payeeName"`
	Amount     moneyJSON `json:"amount"`
	Type       string    `json:"type"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type orderView struct {
	ID              string                `json:"id"`
	BusinessName    string                `json:"businessName"`
	BusinessAddress order.BusinessAddress `json:"businessAddress"`
	ContactPerson   string                `json:"contactPerson"`
	Amount          moneyJSON             `json:"amount"`
	PaymentStatus   string                `json:"paymentStatus"`
	DatePaid        *time.Time            `json:"datePaid,omitempty"`
	Payments        []paymentView         `json:"payments"`
}

func (h handlers) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := money.New(req.Amount.Amount, req.Amount.Currency)
	if err != nil {
		h.renderError(w, err)
		return
	}

	o, err := order.Create(
		order.NewID(),
		order.BusinessName(req.BusinessName),
		req.BusinessAddress,
		order.ContactPerson(req.ContactPerson),
		amount,
	)
	if err != nil {
		h.renderError(w, err)
		return
	}

	if err := h.repo.Add(r.Context(), o); err != nil {
		h.renderError(w, err)
		return
	}

	h.renderJSON(w, http.StatusCreated, map[string]string{"id": o.ID().String()})
}

func (h handlers) getOrder(w http.ResponseWriter, r *http.Request) {
	id := order.ID(chi.URLParam(r, "orderID"))

	o, _, err := h.repo.Load(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	view := orderView{
		ID:              o.ID().String(),
		BusinessName:    string(o.BusinessName()),
		BusinessAddress: o.BusinessAddress(),
		ContactPerson:   string(o.ContactPerson()),
		Amount: moneyJSON{
			Amount:   o.Amount().Amount(),
			Currency: o.Amount().Currency(),
		},
		PaymentStatus: string(o.PaymentStatus()),
		Payments:      []paymentView{},
	}

	if datePaid, ok := o.DatePaid(); ok {
		view.DatePaid = &datePaid
	}

	for _, p := range o.Payments() {
		view.Payments = append(view.Payments, paymentView{
			PaymentID: p.ID.String(),
			PayeeName: p.PayeeName,
			Amount: moneyJSON{
				Amount:   p.Amount.Amount(),
				Currency: p.Amount.Currency(),
			},
			Type:       string(p.Type),
			ReceivedAt: p.ReceivedAt,
		})
	}

	h.renderJSON(w, http.StatusOK, view)
}

func (h handlers) payOrder(w http.ResponseWriter, r *http.Request) {
	id := order.ID(chi.URLParam(r, "orderID"))

	err := h.repo.Execute(r.Context(), id, func(o *order.Order) error {
		return o.Pay()
	})
	if err != nil {
		h.renderError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h handlers) receivePayment(w http.ResponseWriter, r *http.Request) {
	id := order.ID(chi.URLParam(r, "orderID"))

	var req receivePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := money.New(req.Amount.Amount, req.Amount.Currency)
	if err != nil {
		h.renderError(w, err)
		return
	}

	paymentID := order.NewPaymentID()

	err = h.repo.Execute(r.Context(), id, func(o *order.Order) error {
		return o.ReceivePayment(paymentID, req.PayeeName, amount, order.PaymentType(req.Type))
	})
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.renderJSON(w, http.StatusCreated, map[string]string{"paymentId": paymentID.String()})
}

func (h handlers) renderJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Cannot encode response", err, nil)
	}
}

func (h handlers) renderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch errors.Cause(err) {
	case order.ErrNotFound:
		status = http.StatusNotFound
	case eventstore.ErrVersionConflict:
		status = http.StatusConflict
	case order.ErrEmptyID,
		order.ErrEmptyBusinessName,
		order.ErrEmptyContactPerson,
		order.ErrEmptyPaymentID,
		order.ErrOrderAmountMustBeGreaterThanZero,
		order.ErrOrderAmountMustNotBeNegative,
		order.ErrPaymentAmountMustBeGreaterThanZero,
		order.ErrPaymentAmountMustNotBeNegative,
		order.ErrPaymentAmountMustNotExceedTotalOrderAmount,
		money.ErrCurrencyMismatch,
		money.ErrEmptyCurrency:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", err, nil)
	}

	h.renderJSON(w, status, map[string]string{"error": err.Error()})
}
