package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/recompletion-service/internal/events"
)

// EventConfig holds configuration for event publishing and consumption
type EventConfig struct {
	Enabled           bool
	Publisher         string // kafka or noop
	KafkaBrokers      string
	RecompletionTopic string
	UnenrolTopic      string
	ConsumerGroup     string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokers, ",")
}

// UsesKafka reports whether events travel through Kafka rather than being dropped.
func (c *EventConfig) UsesKafka() bool {
	return c.Enabled && c.Publisher == "kafka"
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, events are dropped")
		return events.NewNoopEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.RecompletionTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.RecompletionTopic,
			Logger:       logger,
		})
	case "noop", "mock":
		logger.Info("Using no-op event publisher")
		return events.NewNoopEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, events are dropped", "publisher", c.Publisher)
		return events.NewNoopEventPublisher(logger), nil
	}
}

// CreateUnenrolSubscriber builds the Kafka consumer for unenrolment events.
func (c *EventConfig) CreateUnenrolSubscriber(logger *slog.Logger) (*events.UnenrolSubscriber, error) {
	return events.NewKafkaUnenrolSubscriber(events.SubscriberConfig{
		KafkaBrokers:  c.GetKafkaBrokers(),
		TopicName:     c.UnenrolTopic,
		ConsumerGroup: c.ConsumerGroup,
		Logger:        logger,
	})
}
