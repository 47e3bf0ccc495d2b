package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func demoRecord() model.Record {
	return model.Record{
		SessionID:         "DEMO_001",
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

func benignRecord() model.Record {
	return model.Record{
		SessionID:         "DEMO_002",
		NetworkPacketSize: 300,
		ProtocolType:      "TCP",
		LoginAttempts:     2,
		SessionDuration:   500,
		EncryptionUsed:    "AES",
		IPReputationScore: 0.8,
		FailedLogins:      0,
		BrowserType:       "Chrome",
		UnusualTimeAccess: 0,
	}
}

func trainingRecords() []model.Record {
	rows := []struct {
		packet   int
		protocol string
		logins   int
		duration float64
		enc      string
		ip       float64
		failed   int
		browser  string
		unusual  int
		label    int
	}{
		{599, "TCP", 4, 492.98, "DES", 0.606, 1, "Edge", 0, 1},
		{472, "TCP", 3, 1557.99, "DES", 0.301, 0, "Firefox", 0, 0},
		{629, "TCP", 3, 75.04, "None", 0.739, 2, "Chrome", 0, 1},
		{804, "UDP", 4, 601.25, "DES", 0.124, 0, "Unknown", 0, 1},
		{453, "TCP", 5, 532.54, "AES", 0.054, 1, "Firefox", 0, 0},
		{453, "UDP", 5, 380.47, "AES", 0.422, 2, "Chrome", 1, 0},
		{815, "ICMP", 4, 728.11, "AES", 0.413, 1, "Chrome", 0, 0},
		{653, "TCP", 3, 12.60, "AES", 0.097, 3, "Chrome", 1, 1},
	}

	records := make([]model.Record, len(rows))
	for i, r := range rows {
		records[i] = model.Record{
			SessionID:         "SID_" + string(rune('A'+i)),
			NetworkPacketSize: r.packet,
			ProtocolType:      r.protocol,
			LoginAttempts:     r.logins,
			SessionDuration:   r.duration,
			EncryptionUsed:    r.enc,
			IPReputationScore: r.ip,
			FailedLogins:      r.failed,
			BrowserType:       r.browser,
			UnusualTimeAccess: r.unusual,
			AttackDetected:    model.Label(r.label),
		}
	}
	return records
}

// stubPredictor flags any vector whose scaled risk score is above the
// training mean.
type stubPredictor struct{}

func (stubPredictor) PredictProba(x []float64) []float64 {
	if x[9] > 0 {
		return []float64{0.2, 0.8}
	}
	return []float64{0.7, 0.3}
}

func (stubPredictor) FeatureImportances() []float64 {
	imp := make([]float64, len(model.FeatureColumns))
	for i := range imp {
		imp[i] = 0.05
	}
	imp[9] = 0.25
	imp[6] = 0.15
	return imp
}

func (stubPredictor) NumFeatures() int { return len(model.FeatureColumns) }

type fakeEstimator struct {
	err   error
	calls int
}

func (f *fakeEstimator) Fit(_ context.Context, _ [][]float64, _ []int) (model.Predictor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return stubPredictor{}, nil
}

type fakeArtifactStore struct {
	mu        sync.Mutex
	artifacts map[string]*model.Artifact
	saveErr   error
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{artifacts: make(map[string]*model.Artifact)}
}

func (s *fakeArtifactStore) Save(_ context.Context, path string, a *model.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.artifacts[path] = a
	return nil
}

func (s *fakeArtifactStore) Load(_ context.Context, path string) (*model.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[path]
	if !ok {
		return nil, &model.ArtifactNotFoundError{Path: path}
	}
	return a, nil
}

func (s *fakeArtifactStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.artifacts[path]
	return ok, nil
}
