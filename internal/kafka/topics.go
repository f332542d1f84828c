package kafka

import (
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicBookingEvents = "hotel.bookings"
	TopicBillingEvents = "hotel.billing"
	TopicCardPayments  = "hotel.payments.card"
)

// AllTopics lists every topic the hotel services publish to.
func AllTopics() []string {
	return []string{TopicBookingEvents, TopicBillingEvents, TopicCardPayments}
}

// EnsureTopicsExist creates Kafka topics if they don't already exist.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", controller.Host)
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		topicConfigs := []kafka.TopicConfig{
			{
				Topic:             topic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			},
		}

		err = controllerConn.CreateTopics(topicConfigs...)
		if err != nil {
			if err.Error() == "kafka server: topic already exists" {
				continue
			}
			log.Printf("Error creating topic %s: %v", topic, err)
			// Keep going; a missing topic only degrades eventing
		}
	}

	// Wait a moment for topics to be fully created
	time.Sleep(1 * time.Second)
	return nil
}
