// Package telemetry records analysis outcomes as OpenTelemetry metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// MeterName scopes the instruments created by this package.
const MeterName = "github.com/Emmyme/hids-cli/analysis"

// AnalysisMetrics implements port.AnalysisRecorder.
type AnalysisMetrics struct {
	analyzed  metric.Int64Counter
	threats   metric.Int64Counter
	failures  metric.Int64Counter
	riskScore metric.Int64Histogram
}

// NewAnalysisMetrics creates the analysis instruments on the given provider.
func NewAnalysisMetrics(provider metric.MeterProvider) (*AnalysisMetrics, error) {
	meter := provider.Meter(MeterName)

	analyzed, err := meter.Int64Counter("hids_records_analyzed_total",
		metric.WithDescription("Records that produced a verdict"))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzed counter: %w", err)
	}
	threats, err := meter.Int64Counter("hids_threats_detected_total",
		metric.WithDescription("Verdicts whose model prediction was a threat, by rule attack type"))
	if err != nil {
		return nil, fmt.Errorf("failed to create threats counter: %w", err)
	}
	failures, err := meter.Int64Counter("hids_analysis_failures_total",
		metric.WithDescription("Records that failed analysis, by reason"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	riskScore, err := meter.Int64Histogram("hids_risk_score",
		metric.WithDescription("Heuristic risk score of analyzed records"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100))
	if err != nil {
		return nil, fmt.Errorf("failed to create risk score histogram: %w", err)
	}

	return &AnalysisMetrics{
		analyzed:  analyzed,
		threats:   threats,
		failures:  failures,
		riskScore: riskScore,
	}, nil
}

// RecordVerdict counts a verdict and observes its risk score.
func (m *AnalysisMetrics) RecordVerdict(ctx context.Context, v *model.ThreatVerdict) {
	m.analyzed.Add(ctx, 1)
	m.riskScore.Record(ctx, int64(v.RiskScore()))
	if v.ThreatStatus().IsThreat() {
		m.threats.Add(ctx, 1, metric.WithAttributes(attribute.String("attack_type", v.AttackType().String())))
	}
}

// RecordFailure counts a failed analysis.
func (m *AnalysisMetrics) RecordFailure(ctx context.Context, err error) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", failureReason(err))))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, model.ErrFeatureMismatch):
		return "feature_mismatch"
	case errors.Is(err, model.ErrUntrainedModel):
		return "untrained_model"
	case errors.Is(err, model.ErrSchema):
		return "schema"
	default:
		return "other"
	}
}
