package valueobject

import "fmt"

// ThreatStatus is the model-derived status of a verdict.
type ThreatStatus struct {
	value string
}

var (
	StatusThreat   = ThreatStatus{value: "THREAT"}
	StatusNoThreat = ThreatStatus{value: "NO THREAT"}
)

// ThreatStatusFromPrediction maps a binary classifier prediction to a status.
// Only a prediction of 1 is a threat.
func ThreatStatusFromPrediction(prediction int) ThreatStatus {
	if prediction == 1 {
		return StatusThreat
	}
	return StatusNoThreat
}

// ThreatStatusFromString reconstructs a ThreatStatus from its string representation.
func ThreatStatusFromString(s string) (ThreatStatus, error) {
	switch s {
	case "THREAT":
		return StatusThreat, nil
	case "NO THREAT":
		return StatusNoThreat, nil
	default:
		return ThreatStatus{}, fmt.Errorf("invalid threat status: %s", s)
	}
}

// String returns the string representation.
func (s ThreatStatus) String() string {
	return s.value
}

// IsThreat returns true if the status is THREAT.
func (s ThreatStatus) IsThreat() bool {
	return s.value == "THREAT"
}

// Equal checks equality with another ThreatStatus.
func (s ThreatStatus) Equal(other ThreatStatus) bool {
	return s.value == other.value
}
