package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"ms-hotel/internal/models"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish sends a raw message to the given topic.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

func (p *Producer) publishJSON(topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return p.Publish(topic, key, msgBytes)
}

// ---------------- BOOKING EVENTS ----------------

func (p *Producer) publishBooking(eventType string, booking models.Booking, cancellation *models.Cancellation) error {
	event := models.BookingEvent{
		Type:         eventType,
		Booking:      booking,
		Cancellation: cancellation,
		Timestamp:    time.Now(),
	}
	return p.publishJSON(TopicBookingEvents, strconv.FormatInt(booking.ID, 10), event)
}

func (p *Producer) PublishBookingCreated(booking models.Booking) error {
	return p.publishBooking("booking_created", booking, nil)
}

func (p *Producer) PublishBookingCheckedIn(booking models.Booking) error {
	return p.publishBooking("booking_checked_in", booking, nil)
}

func (p *Producer) PublishBookingCheckedOut(booking models.Booking) error {
	return p.publishBooking("booking_checked_out", booking, nil)
}

func (p *Producer) PublishBookingCancelled(booking models.Booking, cancellation models.Cancellation) error {
	return p.publishBooking("booking_cancelled", booking, &cancellation)
}

// ---------------- BILLING EVENTS ----------------

func (p *Producer) PublishInvoiceCreated(invoice models.Invoice) error {
	event := models.BillingEvent{
		Type:      "invoice_created",
		Invoice:   invoice,
		Timestamp: time.Now(),
	}
	return p.publishJSON(TopicBillingEvents, strconv.FormatInt(invoice.ID, 10), event)
}

func (p *Producer) PublishPaymentRecorded(invoice models.Invoice, payment models.Payment) error {
	event := models.BillingEvent{
		Type:      "payment_recorded",
		Invoice:   invoice,
		Payment:   &payment,
		Timestamp: time.Now(),
	}
	return p.publishJSON(TopicBillingEvents, strconv.FormatInt(invoice.ID, 10), event)
}

// ---------------- CARD PAYMENTS ----------------

// PublishCardPaymentSucceeded is emitted by the payment gateway; the core
// service consumes it and records the receipt through the billing ledger.
func (p *Producer) PublishCardPaymentSucceeded(event models.CardPaymentEvent) error {
	return p.publishJSON(TopicCardPayments, event.AttemptID, event)
}
