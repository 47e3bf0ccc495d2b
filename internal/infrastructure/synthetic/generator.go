// Package synthetic generates labelled session records for demos and tests.
package synthetic

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// Scenario names one kind of generated session.
type Scenario string

const (
	ScenarioNormal             Scenario = "normal"
	ScenarioBruteForce         Scenario = "brute_force"
	ScenarioDDoS               Scenario = "ddos"
	ScenarioCredentialStuffing Scenario = "credential_stuffing"
	ScenarioSessionHijacking   Scenario = "session_hijacking"
	ScenarioDataExfiltration   Scenario = "data_exfiltration"
	ScenarioStealthyAttack     Scenario = "stealthy"
)

// DefaultAttackRatio is the share of attack records unless WithAttackRatio is given.
const DefaultAttackRatio = 0.45

const checkContextEvery = 1024

// AttackScenarios lists the labelled-attack scenarios. Every one but
// ScenarioStealthyAttack is shaped to trigger the matching attack rule.
var AttackScenarios = []Scenario{
	ScenarioBruteForce,
	ScenarioDDoS,
	ScenarioCredentialStuffing,
	ScenarioSessionHijacking,
	ScenarioDataExfiltration,
	ScenarioStealthyAttack,
}

var (
	knownBrowsers = []string{"Chrome", "Firefox", "Edge", "Safari"}
	protocols     = []string{"TCP", "TCP", "TCP", "UDP", "ICMP"}
	ciphers       = []string{"AES", "AES", "DES"}
)

// Generator implements port.RecordGenerator. The same seed always yields the
// same records.
type Generator struct {
	mu          sync.Mutex
	faker       *gofakeit.Faker
	attackRatio float64
	generated   int
}

// Option configures a Generator.
type Option func(*Generator)

// WithAttackRatio sets the share of attack records, within [0,1].
func WithAttackRatio(ratio float64) Option {
	return func(g *Generator) { g.attackRatio = ratio }
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64, opts ...Option) (*Generator, error) {
	g := &Generator{
		faker:       gofakeit.New(seed),
		attackRatio: DefaultAttackRatio,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.attackRatio < 0 || g.attackRatio > 1 || math.IsNaN(g.attackRatio) {
		return nil, fmt.Errorf("attack ratio must be within [0,1], got %g", g.attackRatio)
	}
	return g, nil
}

// Generate returns n labelled records. Session IDs continue across calls.
func (g *Generator) Generate(ctx context.Context, n int) ([]model.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := make([]model.Record, 0, n)
	for i := range n {
		if i%checkContextEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		scenario := ScenarioNormal
		if g.faker.Float64() < g.attackRatio {
			scenario = AttackScenarios[g.faker.Number(0, len(AttackScenarios)-1)]
		}
		g.generated++
		records = append(records, g.record(scenario, fmt.Sprintf("SID_%05d", g.generated)))
	}
	return records, nil
}

// Record returns one record of the given scenario.
func (g *Generator) Record(scenario Scenario, sessionID string) model.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.record(scenario, sessionID)
}

func (g *Generator) record(scenario Scenario, sessionID string) model.Record {
	f := g.faker
	r := g.normal(sessionID)
	label := 1

	switch scenario {
	case ScenarioBruteForce:
		r.LoginAttempts = f.Number(6, 12)
		r.FailedLogins = f.Number(3, 8)
		r.SessionDuration = g.duration(5, 99)
		r.IPReputationScore = g.reputation(0.05, 0.6)
	case ScenarioDDoS:
		r.NetworkPacketSize = f.Number(801, 1500)
		r.ProtocolType = f.RandomString([]string{"UDP", "ICMP"})
		r.SessionDuration = g.duration(1001, 3000)
	case ScenarioCredentialStuffing:
		r.FailedLogins = f.Number(4, 9)
		r.LoginAttempts = f.Number(4, 10)
		r.IPReputationScore = g.reputation(0.01, 0.29)
		r.SessionDuration = g.duration(100, 900)
	case ScenarioSessionHijacking:
		r.SessionDuration = g.duration(2001, 4000)
		r.UnusualTimeAccess = 1
		r.EncryptionUsed = model.EncryptionNone
	case ScenarioDataExfiltration:
		r.NetworkPacketSize = f.Number(601, 800)
		r.SessionDuration = g.duration(1501, 3000)
		r.BrowserType = "Unknown"
		r.UnusualTimeAccess = 0
	case ScenarioStealthyAttack:
		// Matches no rule; only the label marks it.
		r.IPReputationScore = g.reputation(0.05, 0.35)
		r.FailedLogins = f.Number(1, 3)
	default:
		label = 0
	}

	r.AttackDetected = &label
	return r
}

func (g *Generator) normal(sessionID string) model.Record {
	f := g.faker
	r := model.Record{
		SessionID:         sessionID,
		NetworkPacketSize: f.Number(64, 800),
		ProtocolType:      f.RandomString(protocols),
		LoginAttempts:     f.Number(1, 4),
		SessionDuration:   g.duration(1, 1200),
		EncryptionUsed:    f.RandomString(ciphers),
		IPReputationScore: g.reputation(0.4, 1),
		FailedLogins:      f.Number(0, 1),
		BrowserType:       f.RandomString(knownBrowsers),
	}
	if f.Number(0, 9) == 0 {
		r.UnusualTimeAccess = 1
	}
	if f.Number(0, 19) == 0 {
		r.EncryptionUsed = model.EncryptionNone
	}
	return r
}

func (g *Generator) duration(lo, hi float64) float64 {
	return math.Round(g.faker.Float64Range(lo, hi)*100) / 100
}

func (g *Generator) reputation(lo, hi float64) float64 {
	return math.Round(g.faker.Float64Range(lo, hi)*1000) / 1000
}
