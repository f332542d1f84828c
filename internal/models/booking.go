package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingReserved   BookingStatus = "reserved"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

// Terminal reports whether the status ends the booking lifecycle.
func (s BookingStatus) Terminal() bool {
	return s == BookingCheckedOut || s == BookingCancelled
}

// Active reports whether the booking still occupies its room.
func (s BookingStatus) Active() bool {
	return s == BookingReserved || s == BookingCheckedIn
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID         int64         `bun:"id,pk,autoincrement" json:"id"`
	CustomerID int64         `bun:"customer_id,notnull" json:"customer_id"`
	RoomID     int64         `bun:"room_id,notnull" json:"room_id"`
	CheckIn    time.Time     `bun:"check_in,notnull" json:"check_in"`
	CheckOut   *time.Time    `bun:"check_out,nullzero" json:"check_out,omitempty"`
	Status     BookingStatus `bun:"status,notnull" json:"status"`
	Total      float64       `bun:"total,notnull" json:"total"`
}

type Cancellation struct {
	bun.BaseModel `bun:"table:cancellations"`

	ID        int64   `bun:"id,pk,autoincrement" json:"id"`
	BookingID int64   `bun:"booking_id,notnull" json:"booking_id"`
	Reason    string  `bun:"reason" json:"reason"`
	Refund    float64 `bun:"refund,notnull" json:"refund"`
}

type BookingRequest struct {
	CustomerID int64      `json:"customer_id"`
	RoomID     int64      `json:"room_id"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
