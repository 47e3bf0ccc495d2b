package valueobject

import "fmt"

// Confidence is an immutable value object for the rule matcher's confidence label.
type Confidence struct {
	value string
}

var (
	ConfidenceHigh   = Confidence{value: "High"}
	ConfidenceMedium = Confidence{value: "Medium"}
	ConfidenceLow    = Confidence{value: "Low"}
)

// ConfidenceFromString reconstructs a Confidence from its string representation.
func ConfidenceFromString(s string) (Confidence, error) {
	switch s {
	case "High":
		return ConfidenceHigh, nil
	case "Medium":
		return ConfidenceMedium, nil
	case "Low":
		return ConfidenceLow, nil
	default:
		return Confidence{}, fmt.Errorf("invalid confidence: %s", s)
	}
}

// String returns the string representation.
func (c Confidence) String() string {
	return c.value
}

// Rank orders confidences: Low=1, Medium=2, High=3, unset=0.
func (c Confidence) Rank() int {
	switch c.value {
	case "Low":
		return 1
	case "Medium":
		return 2
	case "High":
		return 3
	default:
		return 0
	}
}

// IsZero returns true if the Confidence has not been set.
func (c Confidence) IsZero() bool {
	return c.value == ""
}

// Equal checks equality with another Confidence.
func (c Confidence) Equal(other Confidence) bool {
	return c.value == other.value
}
