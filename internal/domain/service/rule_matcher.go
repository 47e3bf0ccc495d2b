package service

import (
	"slices"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/valueobject"
)

// AttackRule is one entry of the ordered attack-pattern table.
type AttackRule struct {
	AttackType  valueobject.AttackType
	Confidence  valueobject.Confidence
	Description string
	matches     func(r model.Record) bool
}

// Matches reports whether the rule's predicate holds for r.
func (a AttackRule) Matches(r model.Record) bool {
	return a.matches(r)
}

// Match is the rule matcher's classification of a record.
type Match struct {
	AttackType valueobject.AttackType
	Confidence valueobject.Confidence
}

var attackRules = []AttackRule{
	{
		AttackType:  valueobject.AttackBruteForce,
		Confidence:  valueobject.ConfidenceHigh,
		Description: "login_attempts > 5 and failed_logins > 2 and session_duration < 100",
		matches: func(r model.Record) bool {
			return r.LoginAttempts > 5 && r.FailedLogins > 2 && r.SessionDuration < 100
		},
	},
	{
		AttackType:  valueobject.AttackDDoS,
		Confidence:  valueobject.ConfidenceHigh,
		Description: "network_packet_size > 800 and protocol_type in (UDP, ICMP) and session_duration > 1000",
		matches: func(r model.Record) bool {
			return r.NetworkPacketSize > 800 &&
				(r.ProtocolType == "UDP" || r.ProtocolType == "ICMP") &&
				r.SessionDuration > 1000
		},
	},
	{
		AttackType:  valueobject.AttackCredentialStuffing,
		Confidence:  valueobject.ConfidenceMedium,
		Description: "failed_logins > 3 and ip_reputation_score < 0.3 and login_attempts > 3",
		matches: func(r model.Record) bool {
			return r.FailedLogins > 3 && r.IPReputationScore < 0.3 && r.LoginAttempts > 3
		},
	},
	{
		AttackType:  valueobject.AttackSessionHijacking,
		Confidence:  valueobject.ConfidenceMedium,
		Description: "session_duration > 2000 and unusual_time_access = 1 and encryption_used = None",
		matches: func(r model.Record) bool {
			return r.SessionDuration > 2000 && r.UnusualTimeAccess == 1 &&
				r.EncryptionUsed == model.EncryptionNone
		},
	},
	{
		AttackType:  valueobject.AttackDataExfiltration,
		Confidence:  valueobject.ConfidenceMedium,
		Description: "network_packet_size > 600 and session_duration > 1500 and browser_type = Unknown",
		matches: func(r model.Record) bool {
			return r.NetworkPacketSize > 600 && r.SessionDuration > 1500 && r.BrowserType == "Unknown"
		},
	},
}

// AttackRules returns the attack-pattern table in priority order.
func AttackRules() []AttackRule {
	return slices.Clone(attackRules)
}

// RuleMatcher classifies records against the ordered attack-pattern table.
// The first matching rule wins; no match yields (Unknown, Low).
type RuleMatcher struct {
	rules []AttackRule
}

// NewRuleMatcher creates a RuleMatcher over the built-in rule table.
func NewRuleMatcher() *RuleMatcher {
	return &RuleMatcher{rules: AttackRules()}
}

// Classify returns the first matching rule's attack type and confidence.
func (m *RuleMatcher) Classify(r model.Record) Match {
	for _, rule := range m.rules {
		if rule.Matches(r) {
			return Match{AttackType: rule.AttackType, Confidence: rule.Confidence}
		}
	}
	return Match{AttackType: valueobject.AttackUnknown, Confidence: valueobject.ConfidenceLow}
}
