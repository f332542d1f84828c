package kafka

import (
	"context"
	"encoding/json"
	"log"
	"ms-hotel/internal/models"

	"github.com/segmentio/kafka-go"
)

// Consumer reads settled card payments published by the payment gateway so
// the core can record them on the invoice.
type Consumer struct {
	reader *kafka.Reader
}

func NewCardPaymentConsumer(brokers []string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    TopicCardPayments,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Start blocks, dispatching each card payment event to the handler.
func (c *Consumer) Start(handler func(event models.CardPaymentEvent)) {
	for {
		msg, err := c.reader.ReadMessage(context.Background())
		if err != nil {
			log.Printf("card payment consumer: read error: %v", err)
			continue
		}

		var event models.CardPaymentEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("card payment consumer: bad payload: %v", err)
			continue
		}

		handler(event)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
