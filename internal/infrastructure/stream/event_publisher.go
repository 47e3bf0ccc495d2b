package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Emmyme/hids-cli/pkg/events"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
)

type messageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher on a Kafka topic. Events are
// keyed by aggregate ID so every event of one verdict lands on one partition.
type EventPublisher struct {
	producer messageProducer
	topic    string
	logger   *slog.Logger
}

// NewEventPublisher creates a new Kafka event publisher.
func NewEventPublisher(producer *pkgkafka.Producer, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish sends domain events to the topic in one write.
func (p *EventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, len(evts))
	for i, evt := range evts {
		headers := events.Headers(evt)
		headers["content-type"] = "application/json"
		messages[i] = pkgkafka.Message{
			Key:     []byte(evt.AggregateID().String()),
			Value:   evt.Payload(),
			Headers: headers,
		}
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish %d events to topic %s: %w", len(evts), p.topic, err)
	}

	p.logger.InfoContext(ctx, "published events",
		slog.String("topic", p.topic),
		slog.Int("count", len(evts)),
		slog.String("event_type", evts[0].EventType()),
	)
	return nil
}
