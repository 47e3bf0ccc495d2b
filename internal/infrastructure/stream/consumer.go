// Package stream moves session records over Kafka as JSON messages.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
)

// RecordHandler processes one decoded record. Returning an error matching
// model.ErrMalformedRecord or model.ErrSchema drops the message; any other
// error leaves it uncommitted.
type RecordHandler func(ctx context.Context, r model.Record) error

// Consumer reads JSON records from a topic and hands them to a RecordHandler.
type Consumer struct {
	consumer *pkgkafka.Consumer
	logger   *slog.Logger
}

// NewConsumer creates a consumer for topic.
func NewConsumer(cfg pkgkafka.Config, topic string, handle RecordHandler, logger *slog.Logger) (*Consumer, error) {
	c, err := pkgkafka.NewConsumer(cfg, topic, Decode(handle), logger)
	if err != nil {
		return nil, err
	}
	return &Consumer{consumer: c, logger: logger}, nil
}

// Start blocks until ctx is canceled or fetching fails.
func (c *Consumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.consumer.Close()
}

// Decode adapts a RecordHandler to a raw Kafka handler. Messages that are not
// JSON or that lack an input field are skipped without reaching handle.
func Decode(handle RecordHandler) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		var in model.RecordInput
		if err := json.Unmarshal(msg.Value, &in); err != nil {
			return fmt.Errorf("%w: decode record at offset %d: %v", pkgkafka.ErrSkipMessage, msg.Offset, err)
		}
		if in.SessionID == "" {
			in.SessionID = string(msg.Key)
		}
		if in.SessionID == "" {
			in.SessionID = fmt.Sprintf("%s_%d_%d", msg.Topic, msg.Partition, msg.Offset)
		}

		r, err := in.Record()
		if err != nil {
			return fmt.Errorf("%w: record at offset %d: %w", pkgkafka.ErrSkipMessage, msg.Offset, err)
		}

		if err := handle(ctx, r); err != nil {
			if isRecordError(err) {
				return fmt.Errorf("%w: %w", pkgkafka.ErrSkipMessage, err)
			}
			return err
		}
		return nil
	}
}
