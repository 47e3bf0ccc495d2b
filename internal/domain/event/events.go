package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/pkg/events"
)

const (
	// EventTypeThreatDetected is emitted when a verdict flags a threat,
	// either by the model or by an attack rule.
	EventTypeThreatDetected = "hids.threat.detected"

	aggregateType = "ThreatVerdict"
)

// ThreatDetected is published for every verdict that needs attention.
// Rule and model results are carried side by side.
type ThreatDetected struct {
	VerdictID       uuid.UUID `json:"verdict_id"`
	SessionID       string    `json:"session_id"`
	AttackType      string    `json:"attack_type"`
	Confidence      string    `json:"confidence"`
	RiskScore       int       `json:"risk_score"`
	Indicators      []string  `json:"indicators"`
	ThreatStatus    string    `json:"threat_status"`
	ModelConfidence float64   `json:"model_confidence"`
	DetectedAt      time.Time `json:"detected_at"`
}

// NewThreatDetected builds the event for v. ok is false when neither the
// model nor any rule flagged the record.
func NewThreatDetected(v *model.ThreatVerdict) (evt ThreatDetected, ok bool) {
	if !v.ThreatStatus().IsThreat() && !v.AttackType().IsKnown() {
		return ThreatDetected{}, false
	}
	return ThreatDetected{
		VerdictID:       v.ID(),
		SessionID:       v.SessionID(),
		AttackType:      v.AttackType().String(),
		Confidence:      v.Confidence().String(),
		RiskScore:       v.RiskScore(),
		Indicators:      v.Indicators(),
		ThreatStatus:    v.ThreatStatus().String(),
		ModelConfidence: v.ModelConfidence(),
		DetectedAt:      v.AnalyzedAt(),
	}, true
}

// EventType returns the event type identifier.
func (e ThreatDetected) EventType() string {
	return EventTypeThreatDetected
}

// AggregateID returns the verdict ID as the aggregate identifier.
func (e ThreatDetected) AggregateID() uuid.UUID {
	return e.VerdictID
}

// DomainEvent wraps e with a JSON payload for publishing.
func (e ThreatDetected) DomainEvent() (events.DomainEvent, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", e.EventType(), err)
	}
	return events.NewBaseEvent(e.EventType(), e.VerdictID, aggregateType, e.DetectedAt, payload), nil
}
