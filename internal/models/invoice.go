package models

import (
	"time"

	"github.com/uptrace/bun"
)

type InvoiceStatus string

const (
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
)

type Invoice struct {
	bun.BaseModel `bun:"table:invoices"`

	ID        int64         `bun:"id,pk,autoincrement" json:"id"`
	BookingID int64         `bun:"booking_id,notnull" json:"booking_id"`
	Amount    float64       `bun:"amount,notnull" json:"amount"`
	Paid      float64       `bun:"paid,notnull" json:"paid"`
	Status    InvoiceStatus `bun:"status,notnull" json:"status"`
}

// Payment rows are append-only receipts; they are never updated or deleted.
type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	InvoiceID int64     `bun:"invoice_id,notnull" json:"invoice_id"`
	Amount    float64   `bun:"amount,notnull" json:"amount"`
	Reference string    `bun:"reference,notnull" json:"reference"`
	PayTime   time.Time `bun:"pay_time,notnull" json:"pay_time"`
}

type PayRequest struct {
	Amount float64 `json:"amount"`
}

type TaxRequest struct {
	RatePercent float64 `json:"rate_percent"`
}
