package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/domain/event"
	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/port"
	"github.com/Emmyme/hids-cli/pkg/events"
)

// Analyzer turns one record into a verdict. *service.ThreatAnalyzer satisfies it.
type Analyzer interface {
	Analyze(r model.Record) (*model.ThreatVerdict, error)
}

// AnalyzeRecords is the use case for analyzing a batch of records.
type AnalyzeRecords struct {
	analyzer  Analyzer
	repo      port.VerdictRepository
	publisher port.EventPublisher
	recorder  port.AnalysisRecorder
	tracer    trace.Tracer
	logger    *slog.Logger
	workers   int
}

// AnalyzeOption configures AnalyzeRecords.
type AnalyzeOption func(*AnalyzeRecords)

// WithVerdictRepository persists every verdict.
func WithVerdictRepository(repo port.VerdictRepository) AnalyzeOption {
	return func(uc *AnalyzeRecords) { uc.repo = repo }
}

// WithEventPublisher publishes a ThreatDetected event for every flagged verdict.
func WithEventPublisher(publisher port.EventPublisher) AnalyzeOption {
	return func(uc *AnalyzeRecords) { uc.publisher = publisher }
}

// WithRecorder reports verdicts and failures to recorder.
func WithRecorder(recorder port.AnalysisRecorder) AnalyzeOption {
	return func(uc *AnalyzeRecords) { uc.recorder = recorder }
}

// WithTracer opens a span per batch.
func WithTracer(tracer trace.Tracer) AnalyzeOption {
	return func(uc *AnalyzeRecords) { uc.tracer = tracer }
}

// WithWorkers bounds how many records are analyzed at once.
func WithWorkers(n int) AnalyzeOption {
	return func(uc *AnalyzeRecords) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// NewAnalyzeRecords creates a new AnalyzeRecords use case.
func NewAnalyzeRecords(analyzer Analyzer, logger *slog.Logger, opts ...AnalyzeOption) *AnalyzeRecords {
	uc := &AnalyzeRecords{
		analyzer: analyzer,
		logger:   logger,
		workers:  1,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute analyzes every record and returns verdicts in input order. Without
// SkipInvalid the first failing record aborts the batch and nothing is saved.
// The batch's verdicts are saved in one repository call, so a failed save
// stores none of them and publishes no events.
func (uc *AnalyzeRecords) Execute(ctx context.Context, req dto.AnalyzeRecordsRequest) (dto.AnalyzeRecordsResponse, error) {
	if uc.tracer != nil {
		var span trace.Span
		ctx, span = uc.tracer.Start(ctx, "AnalyzeRecords",
			trace.WithAttributes(attribute.Int("hids.records", len(req.Records))))
		defer span.End()

		resp, err := uc.execute(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Int("hids.verdicts", len(resp.Verdicts)),
			attribute.Int("hids.failures", len(resp.Failures)),
		)
		return resp, err
	}
	return uc.execute(ctx, req)
}

func (uc *AnalyzeRecords) execute(ctx context.Context, req dto.AnalyzeRecordsRequest) (dto.AnalyzeRecordsResponse, error) {
	verdicts := make([]*model.ThreatVerdict, len(req.Records))
	failures := make([]error, len(req.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, r := range req.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := uc.analyzer.Analyze(r)
			if err != nil {
				uc.recordFailure(ctx, err)
				if !req.SkipInvalid {
					return fmt.Errorf("record %d: %w", i+1, err)
				}
				failures[i] = err
				return nil
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dto.AnalyzeRecordsResponse{}, err
	}

	resp := dto.AnalyzeRecordsResponse{Verdicts: []dto.VerdictResponse{}}
	var (
		analyzed []*model.ThreatVerdict
		pending  []events.DomainEvent
	)
	for i, v := range verdicts {
		if v == nil {
			uc.logger.WarnContext(ctx, "skipping record",
				"index", i+1,
				"session_id", req.Records[i].SessionID,
				"error", failures[i],
			)
			resp.Failures = append(resp.Failures, dto.RecordFailure{
				Index:     i + 1,
				SessionID: req.Records[i].SessionID,
				Error:     failures[i].Error(),
			})
			continue
		}

		analyzed = append(analyzed, v)
		if uc.publisher != nil {
			if evt, ok := event.NewThreatDetected(v); ok {
				de, err := evt.DomainEvent()
				if err != nil {
					return dto.AnalyzeRecordsResponse{}, err
				}
				pending = append(pending, de)
			}
		}
		resp.Verdicts = append(resp.Verdicts, dto.FromVerdict(v))
	}

	if uc.repo != nil && len(analyzed) > 0 {
		if err := uc.repo.Save(ctx, analyzed...); err != nil {
			return dto.AnalyzeRecordsResponse{}, fmt.Errorf("failed to save %d verdicts: %w", len(analyzed), err)
		}
	}
	if uc.recorder != nil {
		for _, v := range analyzed {
			uc.recorder.RecordVerdict(ctx, v)
		}
	}

	if len(pending) > 0 {
		if err := uc.publisher.Publish(ctx, pending...); err != nil {
			return dto.AnalyzeRecordsResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}
	return resp, nil
}

func (uc *AnalyzeRecords) recordFailure(ctx context.Context, err error) {
	if uc.recorder != nil {
		uc.recorder.RecordFailure(ctx, err)
	}
}

// IsRecordError reports whether err was caused by the record itself rather
// than the model or infrastructure.
func IsRecordError(err error) bool {
	return errors.Is(err, model.ErrMalformedRecord) || errors.Is(err, model.ErrSchema)
}
