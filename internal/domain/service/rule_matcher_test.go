package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/service"
	"github.com/Emmyme/hids-cli/internal/domain/valueobject"
)

func TestRuleMatcher_Classify(t *testing.T) {
	tests := []struct {
		name       string
		record     model.Record
		attackType valueobject.AttackType
		confidence valueobject.Confidence
	}{
		{
			name: "brute force",
			record: model.Record{
				LoginAttempts: 8, FailedLogins: 5, SessionDuration: 50,
			},
			attackType: valueobject.AttackBruteForce,
			confidence: valueobject.ConfidenceHigh,
		},
		{
			name: "ddos over udp",
			record: model.Record{
				NetworkPacketSize: 900, ProtocolType: "UDP", SessionDuration: 1200,
			},
			attackType: valueobject.AttackDDoS,
			confidence: valueobject.ConfidenceHigh,
		},
		{
			name: "ddos needs udp or icmp",
			record: model.Record{
				NetworkPacketSize: 900, ProtocolType: "TCP", SessionDuration: 1200,
			},
			attackType: valueobject.AttackUnknown,
			confidence: valueobject.ConfidenceLow,
		},
		{
			name: "credential stuffing",
			record: model.Record{
				FailedLogins: 4, IPReputationScore: 0.2, LoginAttempts: 4, SessionDuration: 300,
			},
			attackType: valueobject.AttackCredentialStuffing,
			confidence: valueobject.ConfidenceMedium,
		},
		{
			name: "session hijacking",
			record: model.Record{
				SessionDuration: 2500, UnusualTimeAccess: 1, EncryptionUsed: "None",
			},
			attackType: valueobject.AttackSessionHijacking,
			confidence: valueobject.ConfidenceMedium,
		},
		{
			name: "data exfiltration",
			record: model.Record{
				NetworkPacketSize: 700, SessionDuration: 1600, BrowserType: "Unknown",
			},
			attackType: valueobject.AttackDataExfiltration,
			confidence: valueobject.ConfidenceMedium,
		},
		{
			name:       "no match",
			record:     benignRecord(),
			attackType: valueobject.AttackUnknown,
			confidence: valueobject.ConfidenceLow,
		},
	}

	matcher := service.NewRuleMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := matcher.Classify(tt.record)
			assert.Equal(t, tt.attackType, match.AttackType)
			assert.Equal(t, tt.confidence, match.Confidence)
		})
	}
}

func TestRuleMatcher_PriorityOrder(t *testing.T) {
	matcher := service.NewRuleMatcher()

	// Brute Force does not fire (duration >= 100). DDoS fires ahead of
	// Credential Stuffing, which also holds.
	r := model.Record{
		NetworkPacketSize: 900,
		ProtocolType:      "UDP",
		SessionDuration:   1200,
		LoginAttempts:     8,
		FailedLogins:      4,
		IPReputationScore: 0.1,
	}
	rules := service.AttackRules()
	require.True(t, rules[1].Matches(r))
	require.True(t, rules[2].Matches(r))

	match := matcher.Classify(r)
	assert.Equal(t, valueobject.AttackDDoS, match.AttackType)
	assert.Equal(t, valueobject.ConfidenceHigh, match.Confidence)

	// Brute Force beats Credential Stuffing.
	r = demoRecord()
	require.True(t, rules[2].Matches(r))
	assert.Equal(t, valueobject.AttackBruteForce, matcher.Classify(r).AttackType)
}

func TestAttackRules_Table(t *testing.T) {
	rules := service.AttackRules()
	require.Len(t, rules, 5)

	expected := valueobject.AttackTypes()[:5]
	for i, rule := range rules {
		assert.Equal(t, expected[i], rule.AttackType)
		assert.NotEmpty(t, rule.Description)
	}

	rules[0] = service.AttackRule{}
	assert.Equal(t, valueobject.AttackBruteForce, service.AttackRules()[0].AttackType)
}

func TestIndicators(t *testing.T) {
	indicators := service.Indicators(demoRecord())
	assert.Equal(t, []string{
		"High network packet size: 800 bytes",
		"Multiple failed logins: 5",
		"Low IP reputation: 0.10",
		"Unusual access time",
		"No encryption used",
	}, indicators)

	long := benignRecord()
	long.SessionDuration = 2500.456
	assert.Equal(t, []string{"Long session duration: 2500.46 seconds"}, service.Indicators(long))

	assert.Empty(t, service.Indicators(benignRecord()))
}
