package usecase

import (
	"context"
	"fmt"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/domain/port"
	"github.com/Emmyme/hids-cli/internal/domain/service"
)

// ModelInfo is the use case for describing the saved artifact.
type ModelInfo struct {
	store port.ArtifactStore
}

// NewModelInfo creates a new ModelInfo use case.
func NewModelInfo(store port.ArtifactStore) *ModelInfo {
	return &ModelInfo{store: store}
}

// Execute reports whether an artifact exists at path and, if so, its metadata.
func (uc *ModelInfo) Execute(ctx context.Context, path string) (dto.ModelInfoResponse, error) {
	resp := dto.ModelInfoResponse{ModelPath: path}

	exists, err := uc.store.Exists(ctx, path)
	if err != nil {
		return resp, fmt.Errorf("failed to check artifact: %w", err)
	}
	if !exists {
		return resp, nil
	}

	artifact, err := uc.store.Load(ctx, path)
	if err != nil {
		return resp, fmt.Errorf("failed to read artifact: %w", err)
	}

	resp.Exists = true
	resp.ArtifactID = artifact.ID
	resp.FormatVersion = artifact.FormatVersion
	resp.TrainedAt = artifact.TrainedAt
	resp.FeatureNames = artifact.FeatureNames
	resp.TrainRows = artifact.TrainRows
	resp.TestRows = artifact.TestRows
	resp.Accuracy = artifact.Accuracy
	return resp, nil
}

// ListRules returns the attack rules in the order they are evaluated.
func ListRules() []dto.RuleResponse {
	rules := service.AttackRules()
	out := make([]dto.RuleResponse, len(rules))
	for i, r := range rules {
		out[i] = dto.RuleResponse{
			Priority:    i + 1,
			AttackType:  r.AttackType.String(),
			Confidence:  r.Confidence.String(),
			Description: r.Description,
		}
	}
	return out
}
