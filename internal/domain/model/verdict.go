package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/valueobject"
)

// ThreatVerdict is the combined rule-based and model-based result for one
// record. Rule output (attack type, confidence, risk score, indicators) and
// model output (prediction, probability) are kept side by side.
type ThreatVerdict struct {
	analyzedAt      time.Time
	attackType      valueobject.AttackType
	confidence      valueobject.Confidence
	threatStatus    valueobject.ThreatStatus
	sessionID       string
	indicators      []string
	probability     []float64
	modelConfidence float64
	riskScore       int
	prediction      int
	id              uuid.UUID
}

// NewThreatVerdict assembles a verdict. The threat status is derived from the
// prediction and the model confidence is the largest class probability.
func NewThreatVerdict(
	sessionID string,
	attackType valueobject.AttackType,
	confidence valueobject.Confidence,
	riskScore int,
	indicators []string,
	prediction int,
	probability []float64,
) (*ThreatVerdict, error) {
	if attackType.IsZero() {
		return nil, fmt.Errorf("attack type is required")
	}
	if confidence.IsZero() {
		return nil, fmt.Errorf("confidence is required")
	}
	if riskScore < 0 || riskScore > 100 {
		return nil, fmt.Errorf("risk score must be between 0 and 100, got %d", riskScore)
	}
	if prediction != 0 && prediction != 1 {
		return nil, fmt.Errorf("prediction must be 0 or 1, got %d", prediction)
	}
	if len(probability) != 2 {
		return nil, fmt.Errorf("probability vector must have 2 classes, got %d", len(probability))
	}

	return &ThreatVerdict{
		id:              uuid.New(),
		sessionID:       sessionID,
		attackType:      attackType,
		confidence:      confidence,
		riskScore:       riskScore,
		indicators:      slices.Clone(indicators),
		prediction:      prediction,
		probability:     slices.Clone(probability),
		modelConfidence: slices.Max(probability),
		threatStatus:    valueobject.ThreatStatusFromPrediction(prediction),
		analyzedAt:      time.Now().UTC(),
	}, nil
}

// ReconstructVerdict rebuilds a ThreatVerdict from persisted data (no validation).
func ReconstructVerdict(
	id uuid.UUID,
	sessionID string,
	attackType valueobject.AttackType,
	confidence valueobject.Confidence,
	riskScore int,
	indicators []string,
	prediction int,
	probability []float64,
	analyzedAt time.Time,
) *ThreatVerdict {
	modelConfidence := 0.0
	if len(probability) > 0 {
		modelConfidence = slices.Max(probability)
	}
	return &ThreatVerdict{
		id:              id,
		sessionID:       sessionID,
		attackType:      attackType,
		confidence:      confidence,
		riskScore:       riskScore,
		indicators:      indicators,
		prediction:      prediction,
		probability:     probability,
		modelConfidence: modelConfidence,
		threatStatus:    valueobject.ThreatStatusFromPrediction(prediction),
		analyzedAt:      analyzedAt,
	}
}

// --- Accessors ---

func (v *ThreatVerdict) ID() uuid.UUID                          { return v.id }
func (v *ThreatVerdict) SessionID() string                      { return v.sessionID }
func (v *ThreatVerdict) AttackType() valueobject.AttackType     { return v.attackType }
func (v *ThreatVerdict) Confidence() valueobject.Confidence     { return v.confidence }
func (v *ThreatVerdict) RiskScore() int                         { return v.riskScore }
func (v *ThreatVerdict) Indicators() []string                   { return slices.Clone(v.indicators) }
func (v *ThreatVerdict) Prediction() int                        { return v.prediction }
func (v *ThreatVerdict) Probability() []float64                 { return slices.Clone(v.probability) }
func (v *ThreatVerdict) ModelConfidence() float64               { return v.modelConfidence }
func (v *ThreatVerdict) ThreatStatus() valueobject.ThreatStatus { return v.threatStatus }
func (v *ThreatVerdict) AnalyzedAt() time.Time                  { return v.analyzedAt }
