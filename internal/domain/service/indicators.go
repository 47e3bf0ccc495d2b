package service

import (
	"fmt"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// Indicators explains which risk-contributing conditions hold for r, in the
// order the risk scorer checks them.
func Indicators(r model.Record) []string {
	indicators := make([]string, 0, 6)

	if r.NetworkPacketSize > 600 {
		indicators = append(indicators, fmt.Sprintf("High network packet size: %v bytes", r.NetworkPacketSize))
	}
	if r.FailedLogins > 2 {
		indicators = append(indicators, fmt.Sprintf("Multiple failed logins: %v", r.FailedLogins))
	}
	if r.IPReputationScore < 0.3 {
		indicators = append(indicators, fmt.Sprintf("Low IP reputation: %.2f", r.IPReputationScore))
	}
	if r.SessionDuration > 1000 {
		indicators = append(indicators, fmt.Sprintf("Long session duration: %.2f seconds", r.SessionDuration))
	}
	if r.UnusualTimeAccess == 1 {
		indicators = append(indicators, "Unusual access time")
	}
	if r.EncryptionUsed == model.EncryptionNone {
		indicators = append(indicators, "No encryption used")
	}

	return indicators
}
