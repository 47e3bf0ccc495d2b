package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is a Kafka record in either direction.
type Message struct {
	// Topic, Partition and Offset are set on consumed messages only.
	Topic     string
	Partition int
	Offset    int64

	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer publishes to any topic through one shared writer. Messages are
// partitioned by key so one session's records stay ordered.
type Producer struct {
	writer *kafkago.Writer
}

// NewProducer builds a producer. It does not connect until the first publish.
func NewProducer(cfg Config) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	transport, err := cfg.transport()
	if err != nil {
		return nil, err
	}
	if transport != nil {
		w.Transport = transport
	}
	return &Producer{writer: w}, nil
}

// Publish writes messages to topic in one batch.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, toKafka(topic, messages)...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes pending writes and releases connections.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}

func toKafka(topic string, messages []Message) []kafkago.Message {
	out := make([]kafkago.Message, len(messages))
	for i, msg := range messages {
		km := kafkago.Message{Topic: topic, Key: msg.Key, Value: msg.Value}
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
		out[i] = km
	}
	return out
}
