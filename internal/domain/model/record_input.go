package model

// RecordInput is a Record as it arrives over JSON. Every input field is a
// pointer so an absent field is told apart from a zero value.
type RecordInput struct {
	SessionID         string   `json:"session_id"`
	NetworkPacketSize *int     `json:"network_packet_size"`
	ProtocolType      *string  `json:"protocol_type"`
	LoginAttempts     *int     `json:"login_attempts"`
	SessionDuration   *float64 `json:"session_duration"`
	EncryptionUsed    *string  `json:"encryption_used"`
	IPReputationScore *float64 `json:"ip_reputation_score"`
	FailedLogins      *int     `json:"failed_logins"`
	BrowserType       *string  `json:"browser_type"`
	UnusualTimeAccess *int     `json:"unusual_time_access"`
	AttackDetected    *int     `json:"attack_detected,omitempty"`
}

// NewRecordInput returns the input form of r with every field present.
func NewRecordInput(r Record) RecordInput {
	return RecordInput{
		SessionID:         r.SessionID,
		NetworkPacketSize: &r.NetworkPacketSize,
		ProtocolType:      &r.ProtocolType,
		LoginAttempts:     &r.LoginAttempts,
		SessionDuration:   &r.SessionDuration,
		EncryptionUsed:    &r.EncryptionUsed,
		IPReputationScore: &r.IPReputationScore,
		FailedLogins:      &r.FailedLogins,
		BrowserType:       &r.BrowserType,
		UnusualTimeAccess: &r.UnusualTimeAccess,
		AttackDetected:    r.AttackDetected,
	}
}

// Record converts the input to a Record. The first absent input column, in
// InputColumns order, is a MalformedRecordError. A present but empty
// encryption_used means the session was unencrypted.
func (in RecordInput) Record() (Record, error) {
	present := map[string]bool{
		ColumnPacketSize:        in.NetworkPacketSize != nil,
		ColumnProtocolType:      in.ProtocolType != nil,
		ColumnLoginAttempts:     in.LoginAttempts != nil,
		ColumnSessionDuration:   in.SessionDuration != nil,
		ColumnEncryptionUsed:    in.EncryptionUsed != nil,
		ColumnIPReputation:      in.IPReputationScore != nil,
		ColumnFailedLogins:      in.FailedLogins != nil,
		ColumnBrowserType:       in.BrowserType != nil,
		ColumnUnusualTimeAccess: in.UnusualTimeAccess != nil,
	}
	for _, col := range InputColumns {
		if !present[col] {
			return Record{}, &MalformedRecordError{SessionID: in.SessionID, Field: col, Reason: "is missing"}
		}
	}

	r := Record{
		SessionID:         in.SessionID,
		NetworkPacketSize: *in.NetworkPacketSize,
		ProtocolType:      *in.ProtocolType,
		LoginAttempts:     *in.LoginAttempts,
		SessionDuration:   *in.SessionDuration,
		EncryptionUsed:    *in.EncryptionUsed,
		IPReputationScore: *in.IPReputationScore,
		FailedLogins:      *in.FailedLogins,
		BrowserType:       *in.BrowserType,
		UnusualTimeAccess: *in.UnusualTimeAccess,
		AttackDetected:    in.AttackDetected,
	}
	if r.EncryptionUsed == "" {
		r.EncryptionUsed = EncryptionNone
	}
	return r, nil
}
