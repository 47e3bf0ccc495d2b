package testutil

import (
	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// Fixed UUIDs for deterministic testing
var (
	TestVerdictID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestVerdictID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// SuspiciousRecord returns a brute-force shaped session scoring 54.
func SuspiciousRecord() model.Record {
	return model.Record{
		SessionID:         "TEST_SUSPICIOUS",
		NetworkPacketSize: 800,
		ProtocolType:      "UDP",
		LoginAttempts:     8,
		SessionDuration:   50,
		EncryptionUsed:    "None",
		IPReputationScore: 0.1,
		FailedLogins:      5,
		BrowserType:       "Chrome",
		UnusualTimeAccess: 1,
	}
}

// BenignRecord returns an ordinary encrypted browser session.
func BenignRecord() model.Record {
	return model.Record{
		SessionID:         "TEST_BENIGN",
		NetworkPacketSize: 450,
		ProtocolType:      "TCP",
		LoginAttempts:     1,
		SessionDuration:   320.5,
		EncryptionUsed:    "AES",
		IPReputationScore: 0.9,
		FailedLogins:      0,
		BrowserType:       "Chrome",
		UnusualTimeAccess: 0,
	}
}
