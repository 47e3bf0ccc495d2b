package valueobject

import "fmt"

// AttackType is an immutable value object naming the attack category assigned
// by the rule matcher.
type AttackType struct {
	value string
}

var (
	AttackBruteForce         = AttackType{value: "Brute Force"}
	AttackDDoS               = AttackType{value: "DDoS"}
	AttackCredentialStuffing = AttackType{value: "Credential Stuffing"}
	AttackSessionHijacking   = AttackType{value: "Session Hijacking"}
	AttackDataExfiltration   = AttackType{value: "Data Exfiltration"}
	AttackUnknown            = AttackType{value: "Unknown"}
)

// AttackTypes lists every attack type in rule priority order, Unknown last.
func AttackTypes() []AttackType {
	return []AttackType{
		AttackBruteForce,
		AttackDDoS,
		AttackCredentialStuffing,
		AttackSessionHijacking,
		AttackDataExfiltration,
		AttackUnknown,
	}
}

// AttackTypeFromString reconstructs an AttackType from its string representation.
func AttackTypeFromString(s string) (AttackType, error) {
	for _, t := range AttackTypes() {
		if t.value == s {
			return t, nil
		}
	}
	return AttackType{}, fmt.Errorf("invalid attack type: %s", s)
}

// String returns the string representation.
func (a AttackType) String() string {
	return a.value
}

// IsZero returns true if the AttackType has not been set.
func (a AttackType) IsZero() bool {
	return a.value == ""
}

// IsKnown returns true for every attack type except Unknown.
func (a AttackType) IsKnown() bool {
	return !a.IsZero() && a.value != AttackUnknown.value
}

// Equal checks equality with another AttackType.
func (a AttackType) Equal(other AttackType) bool {
	return a.value == other.value
}
