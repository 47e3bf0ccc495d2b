// Package artifact persists trained model bundles as single JSON documents.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/infrastructure/forest"
)

type scalerDocument struct {
	Columns []string  `json:"columns"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"`
}

// document is the on-disk layout. The encoder, scaler and forest are only
// ever written and read together.
type document struct {
	ID            uuid.UUID           `json:"id"`
	FormatVersion int                 `json:"format_version"`
	TrainedAt     time.Time           `json:"trained_at"`
	FeatureNames  []string            `json:"feature_names"`
	TrainRows     int                 `json:"train_rows"`
	TestRows      int                 `json:"test_rows"`
	Accuracy      float64             `json:"accuracy"`
	Encoder       map[string][]string `json:"label_encoders"`
	Scaler        scalerDocument      `json:"scaler"`
	Model         *forest.Forest      `json:"model"`
}

// FileStore implements port.ArtifactStore on the local filesystem.
type FileStore struct {
	logger *slog.Logger
}

// NewFileStore creates a new FileStore.
func NewFileStore(logger *slog.Logger) *FileStore {
	return &FileStore{logger: logger}
}

// Save writes the artifact to a temporary file next to path and renames it
// into place, so readers never observe a partial bundle.
func (s *FileStore) Save(ctx context.Context, path string, a *model.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}
	f, ok := a.Predictor.(*forest.Forest)
	if !ok {
		return fmt.Errorf("unsupported predictor type %T", a.Predictor)
	}

	doc := document{
		ID:            a.ID,
		FormatVersion: a.FormatVersion,
		TrainedAt:     a.TrainedAt,
		FeatureNames:  a.FeatureNames,
		TrainRows:     a.TrainRows,
		TestRows:      a.TestRows,
		Accuracy:      a.Accuracy,
		Encoder:       a.Preprocessor.Encoder.Vocabularies(),
		Scaler: scalerDocument{
			Columns: a.Preprocessor.Scaler.Columns(),
			Means:   a.Preprocessor.Scaler.Means(),
			Scales:  a.Preprocessor.Scaler.Scales(),
		},
		Model: f,
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	s.logger.Debug("artifact written", "path", path, "artifact_id", a.ID, "trees", len(f.Trees))
	return nil
}

// Load reads and validates a complete artifact.
func (s *FileStore) Load(ctx context.Context, path string) (*model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &model.ArtifactNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	if doc.Model == nil {
		return nil, fmt.Errorf("artifact %s has no model", path)
	}
	if err := doc.Model.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s has an invalid model: %w", path, err)
	}

	encoder, err := model.NewCategoryEncoder(doc.Encoder)
	if err != nil {
		return nil, fmt.Errorf("artifact %s has an invalid encoder: %w", path, err)
	}
	scaler, err := model.NewScalerState(doc.Scaler.Columns, doc.Scaler.Means, doc.Scaler.Scales)
	if err != nil {
		return nil, fmt.Errorf("artifact %s has an invalid scaler: %w", path, err)
	}

	a := &model.Artifact{
		ID:            doc.ID,
		FormatVersion: doc.FormatVersion,
		TrainedAt:     doc.TrainedAt,
		FeatureNames:  doc.FeatureNames,
		Predictor:     doc.Model,
		Preprocessor:  model.Preprocessor{Encoder: encoder, Scaler: scaler},
		TrainRows:     doc.TrainRows,
		TestRows:      doc.TestRows,
		Accuracy:      doc.Accuracy,
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s is inconsistent: %w", path, err)
	}
	return a, nil
}

// Exists reports whether a file is present at path.
func (s *FileStore) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat artifact: %w", err)
}
