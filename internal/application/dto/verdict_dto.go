package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// VerdictResponse is the output DTO for one analyzed record.
type VerdictResponse struct {
	AnalyzedAt      time.Time `json:"analyzed_at"`
	Indicators      []string  `json:"indicators"`
	Probability     []float64 `json:"probability"`
	ID              uuid.UUID `json:"id"`
	SessionID       string    `json:"session_id"`
	AttackType      string    `json:"attack_type"`
	Confidence      string    `json:"confidence"`
	ThreatStatus    string    `json:"threat_status"`
	ModelConfidence float64   `json:"model_confidence"`
	RiskScore       int       `json:"risk_score"`
	Prediction      int       `json:"prediction"`
}

// FromVerdict maps a domain verdict to the response DTO.
func FromVerdict(v *model.ThreatVerdict) VerdictResponse {
	indicators := v.Indicators()
	if indicators == nil {
		indicators = []string{}
	}
	return VerdictResponse{
		ID:              v.ID(),
		SessionID:       v.SessionID(),
		AttackType:      v.AttackType().String(),
		Confidence:      v.Confidence().String(),
		RiskScore:       v.RiskScore(),
		Indicators:      indicators,
		Prediction:      v.Prediction(),
		Probability:     v.Probability(),
		ModelConfidence: v.ModelConfidence(),
		ThreatStatus:    v.ThreatStatus().String(),
		AnalyzedAt:      v.AnalyzedAt(),
	}
}

// FromVerdicts maps a slice of verdicts, preserving order.
func FromVerdicts(vs []*model.ThreatVerdict) []VerdictResponse {
	out := make([]VerdictResponse, len(vs))
	for i, v := range vs {
		out[i] = FromVerdict(v)
	}
	return out
}

// AnalyzeRecordsRequest is the input DTO for the AnalyzeRecords use case.
type AnalyzeRecordsRequest struct {
	Records []model.Record `json:"records"`
	// SkipInvalid reports failing records in Failures instead of aborting.
	SkipInvalid bool `json:"skip_invalid"`
}

// RecordFailure describes a record that produced no verdict.
type RecordFailure struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
	Index     int    `json:"index"`
}

// AnalyzeRecordsResponse holds verdicts in input order, minus skipped records.
type AnalyzeRecordsResponse struct {
	Verdicts []VerdictResponse `json:"verdicts"`
	Failures []RecordFailure   `json:"failures,omitempty"`
}

// ListVerdictsRequest selects verdict history. An empty SessionID lists the
// most recent verdicts of every session.
type ListVerdictsRequest struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit"`
}
