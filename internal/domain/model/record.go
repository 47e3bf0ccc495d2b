package model

import (
	"fmt"
	"math"
)

// EncryptionNone is the encryption_used value meaning the session was unencrypted.
const EncryptionNone = "None"

// Record is one network/session observation. Counts are integers; duration
// and reputation are real-valued.
type Record struct {
	SessionID         string  `json:"session_id"`
	NetworkPacketSize int     `json:"network_packet_size"`
	ProtocolType      string  `json:"protocol_type"`
	LoginAttempts     int     `json:"login_attempts"`
	SessionDuration   float64 `json:"session_duration"`
	EncryptionUsed    string  `json:"encryption_used"`
	IPReputationScore float64 `json:"ip_reputation_score"`
	FailedLogins      int     `json:"failed_logins"`
	BrowserType       string  `json:"browser_type"`
	UnusualTimeAccess int     `json:"unusual_time_access"`

	// AttackDetected is the ground-truth label, present only in training data.
	AttackDetected *int `json:"attack_detected,omitempty"`
}

// Validate checks every numeric field once, at ingestion.
func (r Record) Validate() error {
	fail := func(field, reason string) error {
		return &MalformedRecordError{SessionID: r.SessionID, Field: field, Reason: reason}
	}

	if r.NetworkPacketSize < 0 {
		return fail(ColumnPacketSize, fmt.Sprintf("must not be negative, got %d", r.NetworkPacketSize))
	}
	if r.LoginAttempts < 0 {
		return fail(ColumnLoginAttempts, fmt.Sprintf("must not be negative, got %d", r.LoginAttempts))
	}
	if r.FailedLogins < 0 {
		return fail(ColumnFailedLogins, fmt.Sprintf("must not be negative, got %d", r.FailedLogins))
	}
	if math.IsNaN(r.SessionDuration) || math.IsInf(r.SessionDuration, 0) {
		return fail(ColumnSessionDuration, "must be a finite number")
	}
	if r.SessionDuration < 0 {
		return fail(ColumnSessionDuration, fmt.Sprintf("must not be negative, got %g", r.SessionDuration))
	}
	if math.IsNaN(r.IPReputationScore) || r.IPReputationScore < 0 || r.IPReputationScore > 1 {
		return fail(ColumnIPReputation, fmt.Sprintf("must be within [0,1], got %g", r.IPReputationScore))
	}
	if r.UnusualTimeAccess != 0 && r.UnusualTimeAccess != 1 {
		return fail(ColumnUnusualTimeAccess, fmt.Sprintf("must be 0 or 1, got %d", r.UnusualTimeAccess))
	}
	if r.AttackDetected != nil && *r.AttackDetected != 0 && *r.AttackDetected != 1 {
		return fail(ColumnAttackDetected, fmt.Sprintf("must be 0 or 1, got %d", *r.AttackDetected))
	}
	return nil
}

// HasLabel reports whether the record carries a ground-truth label.
func (r Record) HasLabel() bool {
	return r.AttackDetected != nil
}

// Category returns the value of a categorical column.
func (r Record) Category(column string) (string, bool) {
	switch column {
	case ColumnProtocolType:
		return r.ProtocolType, true
	case ColumnEncryptionUsed:
		return r.EncryptionUsed, true
	case ColumnBrowserType:
		return r.BrowserType, true
	default:
		return "", false
	}
}

// Label returns a pointer to a label value, for building training records.
func Label(v int) *int {
	return &v
}
