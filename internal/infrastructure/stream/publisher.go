package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
)

const publishBatchSize = 500

// Publisher implements port.RecordSink by producing JSON records to a topic,
// keyed by session ID.
type Publisher struct {
	producer *pkgkafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewPublisher creates a new Kafka record publisher.
func NewPublisher(producer *pkgkafka.Producer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Write publishes records in batches.
func (p *Publisher) Write(ctx context.Context, records []model.Record) error {
	for start := 0; start < len(records); start += publishBatchSize {
		end := min(start+publishBatchSize, len(records))

		messages, err := encode(records[start:end])
		if err != nil {
			return err
		}
		if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
			return fmt.Errorf("failed to publish records to topic %s: %w", p.topic, err)
		}
		p.logger.DebugContext(ctx, "published records",
			slog.String("topic", p.topic),
			slog.Int("count", len(messages)),
		)
	}
	return nil
}

// Destination names the topic.
func (p *Publisher) Destination() string {
	return "kafka://" + p.topic
}

func encode(records []model.Record) ([]pkgkafka.Message, error) {
	messages := make([]pkgkafka.Message, 0, len(records))
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %s: %w", r.SessionID, err)
		}
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(r.SessionID),
			Value: payload,
			Headers: map[string]string{
				"content-type": "application/json",
			},
		})
	}
	return messages, nil
}

func isRecordError(err error) bool {
	return errors.Is(err, model.ErrMalformedRecord) || errors.Is(err, model.ErrSchema)
}
