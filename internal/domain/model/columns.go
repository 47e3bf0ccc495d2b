package model

import "slices"

// Column names of the tabular record schema.
const (
	ColumnSessionID         = "session_id"
	ColumnPacketSize        = "network_packet_size"
	ColumnProtocolType      = "protocol_type"
	ColumnLoginAttempts     = "login_attempts"
	ColumnSessionDuration   = "session_duration"
	ColumnEncryptionUsed    = "encryption_used"
	ColumnIPReputation      = "ip_reputation_score"
	ColumnFailedLogins      = "failed_logins"
	ColumnBrowserType       = "browser_type"
	ColumnUnusualTimeAccess = "unusual_time_access"
	ColumnAttackDetected    = "attack_detected"

	ColumnRiskScore        = "risk_score"
	ColumnHighPacketSize   = "high_packet_size"
	ColumnHighFailedLogins = "high_failed_logins"
	ColumnLowIPReputation  = "low_ip_reputation"
	ColumnLongSession      = "long_session"
)

// InputColumns are the nine raw feature columns in canonical order.
var InputColumns = []string{
	ColumnPacketSize,
	ColumnProtocolType,
	ColumnLoginAttempts,
	ColumnSessionDuration,
	ColumnEncryptionUsed,
	ColumnIPReputation,
	ColumnFailedLogins,
	ColumnBrowserType,
	ColumnUnusualTimeAccess,
}

// CategoricalColumns are the input columns that go through the CategoryEncoder.
var CategoricalColumns = []string{
	ColumnProtocolType,
	ColumnEncryptionUsed,
	ColumnBrowserType,
}

// FeatureColumns is the fitted feature layout: the input columns followed by
// the risk score and the four derived indicators. Fit and transform both build
// vectors in exactly this order.
var FeatureColumns = append(slices.Clone(InputColumns),
	ColumnRiskScore,
	ColumnHighPacketSize,
	ColumnHighFailedLogins,
	ColumnLowIPReputation,
	ColumnLongSession,
)

// ValidateColumns checks a tabular header for every required input column and,
// when requireLabel is set, the label column. All missing columns are reported
// in one SchemaError.
func ValidateColumns(header []string, requireLabel bool) error {
	required := slices.Clone(InputColumns)
	if requireLabel {
		required = append(required, ColumnAttackDetected)
	}

	var missing []string
	for _, col := range required {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
