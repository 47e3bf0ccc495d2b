package service

import (
	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// Risk score bounds.
const (
	MinRiskScore = 0
	MaxRiskScore = 100
)

// RiskScorer is a domain service that computes a bounded heuristic risk score
// from the raw fields of a record.
type RiskScorer struct{}

// NewRiskScorer creates a new RiskScorer instance.
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

// Score validates the record and returns its risk score in [0,100].
func (s *RiskScorer) Score(r model.Record) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return s.score(r), nil
}

// score assumes r has already been validated.
func (s *RiskScorer) score(r model.Record) int {
	score := 0

	// Rule: packet size, highest threshold wins.
	switch {
	case r.NetworkPacketSize > 800:
		score += 25
	case r.NetworkPacketSize > 600:
		score += 15
	case r.NetworkPacketSize > 400:
		score += 10
	}

	// Rule: failed logins, 5 points each up to 20.
	score += min(r.FailedLogins*5, 20)

	// Rule: IP reputation. The term is 1 - reputation*20 truncated toward
	// zero, so any reputation above 0.05 subtracts points. Kept as is for
	// compatibility with models trained on this score.
	score += int(1 - r.IPReputationScore*20)

	// Rule: session duration.
	switch {
	case r.SessionDuration > 2000:
		score += 15
	case r.SessionDuration > 1000:
		score += 10
	}

	// Rule: off-hours access.
	score += r.UnusualTimeAccess * 10

	// Rule: unencrypted session.
	if r.EncryptionUsed == model.EncryptionNone {
		score += 10
	}

	return max(MinRiskScore, min(score, MaxRiskScore))
}
