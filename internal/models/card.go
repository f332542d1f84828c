package models

import "time"

// AttemptStatus tracks the lifecycle of a card charge at the gateway.
type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "pending"
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
)

// PaymentAttempt is the gateway's record of a card charge against an
// invoice. Stored in the gateway's own database, not the core schema.
type PaymentAttempt struct {
	AttemptID     string        `json:"attempt_id"`
	InvoiceID     int64         `json:"invoice_id"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        AttemptStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	ReceiptURL    string        `json:"receipt_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type CardDetails struct {
	Number   string `json:"number"`
	ExpMonth string `json:"exp_month"`
	ExpYear  string `json:"exp_year"`
	CVC      string `json:"cvc"`
	Name     string `json:"name,omitempty"`
}

type CardChargeRequest struct {
	InvoiceID int64        `json:"invoice_id" binding:"required"`
	Amount    float64      `json:"amount" binding:"required"`
	Currency  string       `json:"currency"`
	Token     string       `json:"token,omitempty"`
	Card      *CardDetails `json:"card,omitempty"`
}

type CardValidationRequest struct {
	Card CardDetails `json:"card" binding:"required"`
}

type CardValidationResponse struct {
	Valid    bool   `json:"valid"`
	Message  string `json:"message"`
	CardType string `json:"card_type,omitempty"`
	Last4    string `json:"last4,omitempty"`
}

type CardChargeResponse struct {
	AttemptID     string        `json:"attempt_id"`
	InvoiceID     int64         `json:"invoice_id"`
	Status        AttemptStatus `json:"status"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	TransactionID string        `json:"transaction_id,omitempty"`
	ReceiptURL    string        `json:"receipt_url,omitempty"`
}
