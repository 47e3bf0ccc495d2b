package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/valueobject"
	"github.com/Emmyme/hids-cli/pkg/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock implementations ---

type sliceSource struct {
	records []model.Record
	err     error
}

func (s sliceSource) Records(context.Context) ([]model.Record, error) {
	return s.records, s.err
}

// mockAnalyzer fails records whose session ID starts with "BAD" and flags
// the rest as threats when failed_logins > 2.
type mockAnalyzer struct {
	mu    sync.Mutex
	calls int
}

func (m *mockAnalyzer) Analyze(r model.Record) (*model.ThreatVerdict, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if len(r.SessionID) >= 3 && r.SessionID[:3] == "BAD" {
		return nil, &model.AnalysisError{
			SessionID: r.SessionID,
			Err:       &model.MalformedRecordError{SessionID: r.SessionID, Field: model.ColumnFailedLogins, Reason: "must not be negative"},
		}
	}
	prediction, proba := 0, []float64{0.9, 0.1}
	if r.FailedLogins > 2 {
		prediction, proba = 1, []float64{0.2, 0.8}
	}
	return model.NewThreatVerdict(r.SessionID, valueobject.AttackUnknown, valueobject.ConfidenceLow,
		10, nil, prediction, proba)
}

type mockVerdictRepository struct {
	mu        sync.Mutex
	saved     []*model.ThreatVerdict
	saveErr   error
	saveCalls int
}

func (m *mockVerdictRepository) Save(_ context.Context, verdicts ...*model.ThreatVerdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, verdicts...)
	return nil
}

func (m *mockVerdictRepository) FindByID(_ context.Context, id uuid.UUID) (*model.ThreatVerdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.saved {
		if v.ID() == id {
			return v, nil
		}
	}
	return nil, model.ErrVerdictNotFound
}

func (m *mockVerdictRepository) FindBySessionID(_ context.Context, sessionID string) ([]*model.ThreatVerdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ThreatVerdict
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].SessionID() == sessionID {
			out = append(out, m.saved[i])
		}
	}
	return out, nil
}

func (m *mockVerdictRepository) ListRecent(_ context.Context, limit int) ([]*model.ThreatVerdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ThreatVerdict
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.saved[i])
	}
	return out, nil
}

type mockRecorder struct {
	mu       sync.Mutex
	verdicts int
	failures int
}

func (m *mockRecorder) RecordVerdict(context.Context, *model.ThreatVerdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts++
}

func (m *mockRecorder) RecordFailure(context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

type mockEventPublisher struct {
	published []events.DomainEvent
	err       error
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, evts...)
	return nil
}

type mockSink struct {
	written []model.Record
	err     error
}

func (m *mockSink) Write(_ context.Context, records []model.Record) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, records...)
	return nil
}

func (m *mockSink) Destination() string { return "memory://test" }

var errBoom = errors.New("boom")

func record(sessionID string, failed int) model.Record {
	return model.Record{
		SessionID:         sessionID,
		NetworkPacketSize: 400,
		ProtocolType:      "TCP",
		LoginAttempts:     3,
		SessionDuration:   300,
		EncryptionUsed:    "AES",
		IPReputationScore: 0.7,
		FailedLogins:      failed,
		BrowserType:       "Chrome",
	}
}
