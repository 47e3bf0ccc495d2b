package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/domain/port"
)

// DefaultListLimit caps ListVerdicts when the request sets no limit.
const DefaultListLimit = 50

// GetVerdict is the use case for reading verdict history.
type GetVerdict struct {
	repo port.VerdictRepository
}

// NewGetVerdict creates a new GetVerdict use case.
func NewGetVerdict(repo port.VerdictRepository) *GetVerdict {
	return &GetVerdict{repo: repo}
}

// Execute retrieves a verdict by ID.
func (uc *GetVerdict) Execute(ctx context.Context, id uuid.UUID) (dto.VerdictResponse, error) {
	v, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return dto.VerdictResponse{}, fmt.Errorf("failed to find verdict %s: %w", id, err)
	}
	return dto.FromVerdict(v), nil
}

// List retrieves the verdicts of a session, or the most recent ones when
// no session is given, newest first.
func (uc *GetVerdict) List(ctx context.Context, req dto.ListVerdictsRequest) ([]dto.VerdictResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	if req.SessionID == "" {
		vs, err := uc.repo.ListRecent(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list verdicts: %w", err)
		}
		return dto.FromVerdicts(vs), nil
	}

	vs, err := uc.repo.FindBySessionID(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verdicts for session %s: %w", req.SessionID, err)
	}
	if len(vs) > limit {
		vs = vs[:limit]
	}
	return dto.FromVerdicts(vs), nil
}
