package grpc

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/application/usecase"
	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// MaxBatchSize bounds the records accepted by one AnalyzeBatch call.
const MaxBatchSize = 10000

// RecordMsg is one observation submitted for analysis. Absent input fields
// are rejected rather than read as zero.
type RecordMsg model.RecordInput

func (m *RecordMsg) toRecord() (model.Record, error) {
	return model.RecordInput(*m).Record()
}

// VerdictMsg is the wire form of a verdict.
type VerdictMsg struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	AttackType      string    `json:"attack_type"`
	Confidence      string    `json:"confidence"`
	RiskScore       int32     `json:"risk_score"`
	Indicators      []string  `json:"indicators"`
	Prediction      int32     `json:"prediction"`
	Probability     []float64 `json:"probability"`
	ModelConfidence float64   `json:"model_confidence"`
	ThreatStatus    string    `json:"threat_status"`
	AnalyzedAt      string    `json:"analyzed_at"`
}

// FailureMsg reports a record skipped by AnalyzeBatch.
type FailureMsg struct {
	Index     int32  `json:"index"`
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

type AnalyzeRecordRequest struct {
	Record *RecordMsg `json:"record"`
}

type AnalyzeRecordResponse struct {
	Verdict *VerdictMsg `json:"verdict"`
}

type AnalyzeBatchRequest struct {
	Records     []*RecordMsg `json:"records"`
	SkipInvalid bool         `json:"skip_invalid"`
}

type AnalyzeBatchResponse struct {
	Verdicts []*VerdictMsg `json:"verdicts"`
	Failures []*FailureMsg `json:"failures"`
}

type GetVerdictRequest struct {
	ID string `json:"id"`
}

type GetVerdictResponse struct {
	Verdict *VerdictMsg `json:"verdict"`
}

type ListVerdictsRequest struct {
	SessionID string `json:"session_id"`
	Limit     int32  `json:"limit"`
}

type ListVerdictsResponse struct {
	Verdicts []*VerdictMsg `json:"verdicts"`
}

type ModelInfoRequest struct{}

type ModelInfoResponse struct {
	Exists        bool     `json:"exists"`
	ModelPath     string   `json:"model_path"`
	ArtifactID    string   `json:"artifact_id"`
	FormatVersion int32    `json:"format_version"`
	TrainedAt     string   `json:"trained_at"`
	FeatureNames  []string `json:"feature_names"`
	TrainRows     int32    `json:"train_rows"`
	TestRows      int32    `json:"test_rows"`
	Accuracy      float64  `json:"accuracy"`
}

// ThreatServiceHandler implements the gRPC ThreatServiceServer interface.
type ThreatServiceHandler struct {
	UnimplementedThreatServiceServer
	analyzeRecords *usecase.AnalyzeRecords
	getVerdict     *usecase.GetVerdict
	modelInfo      *usecase.ModelInfo
	modelPath      string
	logger         *slog.Logger
}

// NewThreatServiceHandler creates a new gRPC handler for the threat service.
func NewThreatServiceHandler(
	analyzeRecords *usecase.AnalyzeRecords,
	getVerdict *usecase.GetVerdict,
	modelInfo *usecase.ModelInfo,
	modelPath string,
	logger *slog.Logger,
) *ThreatServiceHandler {
	return &ThreatServiceHandler{
		analyzeRecords: analyzeRecords,
		getVerdict:     getVerdict,
		modelInfo:      modelInfo,
		modelPath:      modelPath,
		logger:         logger,
	}
}

// AnalyzeRecord scores a single record and returns its verdict.
func (h *ThreatServiceHandler) AnalyzeRecord(ctx context.Context, req *AnalyzeRecordRequest) (*AnalyzeRecordResponse, error) {
	if req == nil || req.Record == nil {
		return nil, status.Error(codes.InvalidArgument, "record is required")
	}

	record, err := req.Record.toRecord()
	if err != nil {
		return nil, toStatus(err)
	}

	resp, err := h.analyzeRecords.Execute(ctx, dto.AnalyzeRecordsRequest{
		Records: []model.Record{record},
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to analyze record",
			slog.String("session_id", req.Record.SessionID),
			slog.String("error", err.Error()),
		)
		return nil, toStatus(err)
	}
	return &AnalyzeRecordResponse{Verdict: toVerdictMsg(resp.Verdicts[0])}, nil
}

// AnalyzeBatch scores many records. With skip_invalid, records that fail
// validation are reported instead of failing the call.
func (h *ThreatServiceHandler) AnalyzeBatch(ctx context.Context, req *AnalyzeBatchRequest) (*AnalyzeBatchResponse, error) {
	if req == nil || len(req.Records) == 0 {
		return nil, status.Error(codes.InvalidArgument, "records are required")
	}
	if len(req.Records) > MaxBatchSize {
		return nil, status.Errorf(codes.InvalidArgument, "batch of %d records exceeds the limit of %d", len(req.Records), MaxBatchSize)
	}

	// positions maps each analyzed record back to its 1-based index in the request.
	records := make([]model.Record, 0, len(req.Records))
	positions := make([]int, 0, len(req.Records))
	var failures []*FailureMsg
	for i, m := range req.Records {
		if m == nil {
			return nil, status.Errorf(codes.InvalidArgument, "record %d is empty", i+1)
		}
		r, err := m.toRecord()
		if err != nil {
			if !req.SkipInvalid {
				return nil, status.Errorf(codes.InvalidArgument, "record %d: %v", i+1, err)
			}
			failures = append(failures, &FailureMsg{Index: int32(i + 1), SessionID: m.SessionID, Error: err.Error()})
			continue
		}
		records = append(records, r)
		positions = append(positions, i+1)
	}

	out := &AnalyzeBatchResponse{Verdicts: []*VerdictMsg{}, Failures: failures}
	if len(records) > 0 {
		resp, err := h.analyzeRecords.Execute(ctx, dto.AnalyzeRecordsRequest{
			Records:     records,
			SkipInvalid: req.SkipInvalid,
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to analyze batch",
				slog.Int("records", len(records)),
				slog.String("error", err.Error()),
			)
			return nil, toStatus(err)
		}
		out.Verdicts = toVerdictMsgs(resp.Verdicts)
		for _, f := range resp.Failures {
			out.Failures = append(out.Failures, &FailureMsg{Index: int32(positions[f.Index-1]), SessionID: f.SessionID, Error: f.Error})
		}
	}

	slices.SortFunc(out.Failures, func(a, b *FailureMsg) int { return cmp.Compare(a.Index, b.Index) })
	if out.Failures == nil {
		out.Failures = []*FailureMsg{}
	}
	return out, nil
}

// GetVerdict retrieves a stored verdict by ID.
func (h *ThreatServiceHandler) GetVerdict(ctx context.Context, req *GetVerdictRequest) (*GetVerdictResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	v, err := h.getVerdict.Execute(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetVerdictResponse{Verdict: toVerdictMsg(v)}, nil
}

// ListVerdicts returns verdict history, newest first.
func (h *ThreatServiceHandler) ListVerdicts(ctx context.Context, req *ListVerdictsRequest) (*ListVerdictsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}

	vs, err := h.getVerdict.List(ctx, dto.ListVerdictsRequest{
		SessionID: strings.TrimSpace(req.SessionID),
		Limit:     int(req.Limit),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListVerdictsResponse{Verdicts: toVerdictMsgs(vs)}, nil
}

// ModelInfo describes the artifact the daemon was started with.
func (h *ThreatServiceHandler) ModelInfo(ctx context.Context, _ *ModelInfoRequest) (*ModelInfoResponse, error) {
	info, err := h.modelInfo.Execute(ctx, h.modelPath)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ModelInfoResponse{
		Exists:        info.Exists,
		ModelPath:     info.ModelPath,
		FeatureNames:  info.FeatureNames,
		FormatVersion: int32(info.FormatVersion),
		TrainRows:     int32(info.TrainRows),
		TestRows:      int32(info.TestRows),
		Accuracy:      info.Accuracy,
	}
	if info.Exists {
		resp.ArtifactID = info.ArtifactID.String()
		resp.TrainedAt = info.TrainedAt.Format(time.RFC3339)
	}
	return resp, nil
}

func toVerdictMsg(v dto.VerdictResponse) *VerdictMsg {
	return &VerdictMsg{
		ID:              v.ID.String(),
		SessionID:       v.SessionID,
		AttackType:      v.AttackType,
		Confidence:      v.Confidence,
		RiskScore:       int32(v.RiskScore),
		Indicators:      v.Indicators,
		Prediction:      int32(v.Prediction),
		Probability:     v.Probability,
		ModelConfidence: v.ModelConfidence,
		ThreatStatus:    v.ThreatStatus,
		AnalyzedAt:      v.AnalyzedAt.Format(time.RFC3339),
	}
}

func toVerdictMsgs(vs []dto.VerdictResponse) []*VerdictMsg {
	out := make([]*VerdictMsg, len(vs))
	for i, v := range vs {
		out[i] = toVerdictMsg(v)
	}
	return out
}

// toStatus maps domain errors to gRPC codes. Unknown errors are not echoed.
func toStatus(err error) error {
	switch {
	case errors.Is(err, model.ErrMalformedRecord), errors.Is(err, model.ErrSchema):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrUntrainedModel), errors.Is(err, model.ErrFeatureMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, model.ErrVerdictNotFound), errors.Is(err, model.ErrArtifactNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
