package models

import "time"

// Event envelopes streamed to Kafka. Consumers key on Type.

type BookingEvent struct {
	Type         string        `json:"type"`
	Booking      Booking       `json:"booking"`
	Cancellation *Cancellation `json:"cancellation,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

type BillingEvent struct {
	Type      string    `json:"type"`
	Invoice   Invoice   `json:"invoice"`
	Payment   *Payment  `json:"payment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CardPaymentEvent is published by the payment gateway once a card charge
// settles; the core consumes it and records the receipt on the invoice.
type CardPaymentEvent struct {
	AttemptID string    `json:"attempt_id"`
	InvoiceID int64     `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
