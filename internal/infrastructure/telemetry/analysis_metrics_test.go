package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/valueobject"
	"github.com/Emmyme/hids-cli/internal/infrastructure/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestAnalysisMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := telemetry.NewAnalysisMetrics(provider)
	require.NoError(t, err)

	ctx := context.Background()
	threat := model.ReconstructVerdict(uuid.New(), "DEMO_001", valueobject.AttackBruteForce,
		valueobject.ConfidenceHigh, 54, nil, 1, []float64{0.2, 0.8}, time.Now())
	benign := model.ReconstructVerdict(uuid.New(), "DEMO_002", valueobject.AttackUnknown,
		valueobject.ConfidenceLow, 0, nil, 0, []float64{0.9, 0.1}, time.Now())

	metrics.RecordVerdict(ctx, threat)
	metrics.RecordVerdict(ctx, benign)
	metrics.RecordFailure(ctx, &model.MalformedRecordError{Field: "failed_logins", Reason: "negative"})
	metrics.RecordFailure(ctx, errors.New("boom"))

	data := collect(t, reader)

	assert.Equal(t, int64(2), sumOf(t, data["hids_records_analyzed_total"]))
	assert.Equal(t, int64(2), sumOf(t, data["hids_analysis_failures_total"]))

	threats, ok := data["hids_threats_detected_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, threats.DataPoints, 1)
	assert.Equal(t, int64(1), threats.DataPoints[0].Value)
	attackType, _ := threats.DataPoints[0].Attributes.Value(attribute.Key("attack_type"))
	assert.Equal(t, "Brute Force", attackType.AsString())

	hist, ok := data["hids_risk_score"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(54), hist.DataPoints[0].Sum)
}
