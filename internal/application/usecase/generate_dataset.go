package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/domain/port"
)

// GenerateDataset is the use case for producing a synthetic labelled dataset.
type GenerateDataset struct {
	generator port.RecordGenerator
	logger    *slog.Logger
}

// NewGenerateDataset creates a new GenerateDataset use case.
func NewGenerateDataset(generator port.RecordGenerator, logger *slog.Logger) *GenerateDataset {
	return &GenerateDataset{generator: generator, logger: logger}
}

// Execute generates req.Rows records and writes them to sink.
func (uc *GenerateDataset) Execute(ctx context.Context, sink port.RecordSink, req dto.GenerateDatasetRequest) (dto.GenerateDatasetResponse, error) {
	if req.Rows <= 0 {
		return dto.GenerateDatasetResponse{}, fmt.Errorf("rows must be positive, got %d", req.Rows)
	}

	records, err := uc.generator.Generate(ctx, req.Rows)
	if err != nil {
		return dto.GenerateDatasetResponse{}, fmt.Errorf("failed to generate records: %w", err)
	}
	if err := sink.Write(ctx, records); err != nil {
		return dto.GenerateDatasetResponse{}, fmt.Errorf("failed to write records to %s: %w", sink.Destination(), err)
	}

	resp := dto.GenerateDatasetResponse{Destination: sink.Destination(), Rows: len(records)}
	for _, r := range records {
		if r.AttackDetected != nil && *r.AttackDetected == 1 {
			resp.Threats++
		}
	}

	uc.logger.InfoContext(ctx, "synthetic dataset generated",
		"rows", resp.Rows,
		"threats", resp.Threats,
		"destination", resp.Destination,
	)
	return resp, nil
}
