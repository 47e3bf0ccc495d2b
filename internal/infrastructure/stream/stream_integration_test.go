package stream_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/infrastructure/stream"
	"github.com/Emmyme/hids-cli/pkg/events"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
	"github.com/Emmyme/hids-cli/pkg/testutil"
)

func TestKafka_Integration(t *testing.T) {
	testutil.RequireIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	const (
		recordsTopic = "hids.records.test"
		alertsTopic  = "hids.alerts.test"
	)
	kc.CreateTopics(ctx, t, recordsTopic, alertsTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := pkgkafka.Config{Brokers: kc.Brokers, ConsumerGroup: "hids-test", StartFromEarliest: true}
	require.NoError(t, pkgkafka.Ping(ctx, cfg))

	producer, err := pkgkafka.NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	t.Run("records round trip", func(t *testing.T) {
		records := []model.Record{testutil.SuspiciousRecord(), testutil.BenignRecord()}
		require.NoError(t, stream.NewPublisher(producer, recordsTopic, logger).Write(ctx, records))

		received := make(chan model.Record, len(records))
		consumer, err := stream.NewConsumer(cfg, recordsTopic, func(_ context.Context, r model.Record) error {
			received <- r
			return nil
		}, logger)
		require.NoError(t, err)
		defer consumer.Close()

		got := consumeN(ctx, t, consumer.Start, received, len(records))
		var sessions []string
		for _, r := range got {
			sessions = append(sessions, r.SessionID)
		}
		assert.ElementsMatch(t, []string{"TEST_SUSPICIOUS", "TEST_BENIGN"}, sessions)
	})

	t.Run("threat alerts carry event headers", func(t *testing.T) {
		verdictID := uuid.New()
		evt := events.NewBaseEvent("hids.threat.detected", verdictID, "ThreatVerdict", time.Now(), []byte(`{"risk_score":54}`))
		require.NoError(t, stream.NewEventPublisher(producer, alertsTopic, logger).Publish(ctx, evt))

		received := make(chan pkgkafka.Message, 1)
		consumer, err := pkgkafka.NewConsumer(cfg, alertsTopic, func(_ context.Context, msg pkgkafka.Message) error {
			received <- msg
			return nil
		}, logger)
		require.NoError(t, err)
		defer consumer.Close()

		got := consumeN(ctx, t, consumer.Start, received, 1)
		assert.Equal(t, verdictID.String(), string(got[0].Key))
		assert.JSONEq(t, `{"risk_score":54}`, string(got[0].Value))
		assert.Equal(t, "hids.threat.detected", got[0].Headers[events.HeaderEventType])
		assert.Equal(t, evt.EventID().String(), got[0].Headers[events.HeaderEventID])
	})
}

// consumeN runs start until n values arrive on ch, then stops it.
func consumeN[T any](ctx context.Context, t *testing.T, start func(context.Context) error, ch <-chan T, n int) []T {
	t.Helper()

	consumeCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- start(consumeCtx) }()

	var got []T
	for range n {
		select {
		case v := <-ch:
			got = append(got, v)
		case <-ctx.Done():
			t.Fatal("timed out waiting for messages")
		}
	}
	stop()
	require.NoError(t, <-done)
	return got
}
