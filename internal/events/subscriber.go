package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// UnenrolHandler reacts to one unenrolment. Returning an error nacks the message.
type UnenrolHandler func(ctx context.Context, event UnenrolEvent) error

type SubscriberConfig struct {
	KafkaBrokers  []string
	TopicName     string
	ConsumerGroup string
	Logger        *slog.Logger
}

// UnenrolSubscriber consumes unenrolment events and hands each one to a handler synchronously.
type UnenrolSubscriber struct {
	subscriber message.Subscriber
	topicName  string
	logger     *slog.Logger
}

func NewKafkaUnenrolSubscriber(config SubscriberConfig) (*UnenrolSubscriber, error) {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       config.KafkaBrokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return NewUnenrolSubscriber(subscriber, config.TopicName, config.Logger), nil
}

func NewUnenrolSubscriber(subscriber message.Subscriber, topic string, logger *slog.Logger) *UnenrolSubscriber {
	return &UnenrolSubscriber{
		subscriber: subscriber,
		topicName:  topic,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled or the subscription channel closes.
func (s *UnenrolSubscriber) Run(ctx context.Context, handle UnenrolHandler) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.topicName, err)
	}

	s.logger.Info("Listening for unenrolment events", "topic", s.topicName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.process(ctx, msg, handle)
		}
	}
}

func (s *UnenrolSubscriber) process(ctx context.Context, msg *message.Message, handle UnenrolHandler) {
	event, err := DecodeUnenrolEvent(msg.Payload)
	if err != nil {
		// A malformed payload will never succeed; drop it.
		s.logger.Error("Discarding malformed unenrolment event", "message_id", msg.UUID, "error", err)
		msg.Ack()
		return
	}

	if err := handle(ctx, event); err != nil {
		s.logger.Error("Unenrolment handler failed",
			"message_id", msg.UUID,
			"course_id", event.CourseID,
			"user_id", event.UserID,
			"error", err)
		msg.Nack()
		return
	}
	msg.Ack()
}

// Close closes the underlying subscriber
func (s *UnenrolSubscriber) Close() error {
	return s.subscriber.Close()
}

// DecodeUnenrolEvent accepts either a bare UnenrolEvent or one wrapped in an Event envelope.
func DecodeUnenrolEvent(payload []byte) (UnenrolEvent, error) {
	var envelope struct {
		Type EventType       `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return UnenrolEvent{}, fmt.Errorf("failed to decode unenrolment event: %w", err)
	}

	raw := payload
	if len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	var event UnenrolEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return UnenrolEvent{}, fmt.Errorf("failed to decode unenrolment event: %w", err)
	}
	if event.UserID == 0 || event.CourseID == 0 {
		return UnenrolEvent{}, fmt.Errorf("unenrolment event missing user_id or course_id")
	}
	return event, nil
}
