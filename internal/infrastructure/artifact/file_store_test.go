package artifact_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/service"
	"github.com/Emmyme/hids-cli/internal/infrastructure/artifact"
	"github.com/Emmyme/hids-cli/internal/infrastructure/forest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func records() []model.Record {
	base := []model.Record{
		{SessionID: "A", NetworkPacketSize: 599, ProtocolType: "TCP", LoginAttempts: 4, SessionDuration: 492.98, EncryptionUsed: "DES", IPReputationScore: 0.606, FailedLogins: 1, BrowserType: "Edge"},
		{SessionID: "B", NetworkPacketSize: 472, ProtocolType: "TCP", LoginAttempts: 3, SessionDuration: 1557.99, EncryptionUsed: "DES", IPReputationScore: 0.301, BrowserType: "Firefox"},
		{SessionID: "C", NetworkPacketSize: 629, ProtocolType: "TCP", LoginAttempts: 3, SessionDuration: 75.04, EncryptionUsed: "None", IPReputationScore: 0.739, FailedLogins: 2, BrowserType: "Chrome"},
		{SessionID: "D", NetworkPacketSize: 804, ProtocolType: "UDP", LoginAttempts: 4, SessionDuration: 601.25, EncryptionUsed: "DES", IPReputationScore: 0.124, BrowserType: "Unknown"},
		{SessionID: "E", NetworkPacketSize: 453, ProtocolType: "TCP", LoginAttempts: 5, SessionDuration: 532.54, EncryptionUsed: "AES", IPReputationScore: 0.054, FailedLogins: 1, BrowserType: "Firefox"},
		{SessionID: "F", NetworkPacketSize: 815, ProtocolType: "ICMP", LoginAttempts: 9, SessionDuration: 28.1, EncryptionUsed: "None", IPReputationScore: 0.1, FailedLogins: 6, BrowserType: "Chrome", UnusualTimeAccess: 1},
	}
	labels := []int{1, 0, 1, 1, 0, 1}
	for i := range base {
		base[i].AttackDetected = model.Label(labels[i])
	}
	return base
}

type fixture struct {
	set        *service.TrainingSet
	classifier *service.ThreatClassifier
	store      *artifact.FileStore
	path       string
}

func trainAndSave(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	set, err := service.NewFeatureEngineer(service.NewRiskScorer()).FitTransform(records())
	require.NoError(t, err)

	store := artifact.NewFileStore(discardLogger())
	trainer := forest.NewTrainer(forest.Config{Trees: 10, Seed: 42}, discardLogger())
	c := service.NewThreatClassifier(trainer, store, discardLogger())
	require.NoError(t, c.Train(ctx, set.Features, set.Labels))

	path := filepath.Join(t.TempDir(), "models", "pretrained_model.json")
	_, err = c.Save(ctx, path, set.Preprocessor, service.WithEvaluation(5, 1, 1))
	require.NoError(t, err)

	return fixture{set: set, classifier: c, store: store, path: path}
}

func TestFileStore_RoundTripReproducesFeatures(t *testing.T) {
	fx := trainAndSave(t)
	ctx := context.Background()

	loaded := service.NewThreatClassifier(forest.NewTrainer(forest.Config{}, discardLogger()), fx.store, discardLogger())
	require.NoError(t, loaded.Load(ctx, fx.path))

	prep, err := loaded.Preprocessor()
	require.NoError(t, err)

	engineer := service.NewFeatureEngineer(service.NewRiskScorer())
	for i, r := range records() {
		vec, err := engineer.Transform(r, prep)
		require.NoError(t, err)
		assert.InDeltaSlice(t, fx.set.Features[i], vec, 1e-9)
	}

	before, err := fx.classifier.PredictProba(fx.set.Features)
	require.NoError(t, err)
	after, err := loaded.PredictProba(fx.set.Features)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	a, err := loaded.Artifact()
	require.NoError(t, err)
	assert.Equal(t, 5, a.TrainRows)
	assert.Equal(t, model.FeatureColumns, a.FeatureNames)
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := artifact.NewFileStore(discardLogger())

	_, err := store.Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	var notFound *model.ArtifactNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.True(t, errors.Is(err, model.ErrArtifactNotFound))
}

func TestFileStore_Exists(t *testing.T) {
	fx := trainAndSave(t)
	ctx := context.Background()

	ok, err := fx.store.Exists(ctx, fx.path)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.store.Exists(ctx, fx.path+".missing")
	require.NoError(t, err)
	assert.False(t, ok)

	// only the final file remains after the atomic rename
	entries, err := os.ReadDir(filepath.Dir(fx.path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_LoadRejectsCorruptBundles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"no model", `{"format_version":1,"feature_names":[],"label_encoders":{},"scaler":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "m.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := artifact.NewFileStore(discardLogger()).Load(context.Background(), path)
			require.Error(t, err)
			assert.False(t, errors.Is(err, model.ErrArtifactNotFound))
		})
	}
}

func TestFileStore_LoadKeepsPreviousStateOnFailure(t *testing.T) {
	fx := trainAndSave(t)
	ctx := context.Background()

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"model":{"trees":[]}}`), 0o600))

	require.Error(t, fx.classifier.Load(ctx, bad))
	assert.Equal(t, service.StateTrained, fx.classifier.State())

	_, err := fx.classifier.Preprocessor()
	assert.NoError(t, err)
}
