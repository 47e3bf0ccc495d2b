package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/pkg/events"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
)

type fakeProducer struct {
	topic    string
	messages []pkgkafka.Message
	calls    int
	err      error
}

func (f *fakeProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.topic = topic
	f.messages = append(f.messages, messages...)
	return nil
}

func TestEventPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	p := &EventPublisher{producer: producer, topic: "hids.alerts", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	verdictID := uuid.New()
	evt := events.NewBaseEvent("hids.threat.detected", verdictID, "ThreatVerdict", time.Now(), []byte(`{"risk_score":54}`))

	require.NoError(t, p.Publish(context.Background(), evt))
	assert.Equal(t, "hids.alerts", producer.topic)
	require.Len(t, producer.messages, 1)

	msg := producer.messages[0]
	assert.Equal(t, verdictID.String(), string(msg.Key))
	assert.JSONEq(t, `{"risk_score":54}`, string(msg.Value))
	assert.Equal(t, "hids.threat.detected", msg.Headers[events.HeaderEventType])
	assert.Equal(t, evt.EventID().String(), msg.Headers[events.HeaderEventID])
	assert.Equal(t, "application/json", msg.Headers["content-type"])
}

func TestEventPublisher_NoEvents(t *testing.T) {
	producer := &fakeProducer{}
	p := &EventPublisher{producer: producer, topic: "hids.alerts", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.Publish(context.Background()))
	assert.Zero(t, producer.calls)
}

func TestEventPublisher_ProducerError(t *testing.T) {
	errDown := errors.New("broker down")
	p := &EventPublisher{producer: &fakeProducer{err: errDown}, topic: "hids.alerts", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.Publish(context.Background(), events.NewBaseEvent("x", uuid.New(), "y", time.Now(), nil))
	assert.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), "hids.alerts")
}

func TestNewEventPublisher(t *testing.T) {
	producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	p := NewEventPublisher(producer, "hids.alerts", slog.Default())
	assert.Equal(t, "hids.alerts", p.topic)
}
