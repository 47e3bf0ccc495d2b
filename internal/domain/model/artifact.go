package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ArtifactFormatVersion is bumped whenever the persisted layout changes.
const ArtifactFormatVersion = 1

// Artifact is the persisted bundle of a trained predictor and the
// preprocessor it was trained behind. It is loaded and saved as a unit.
type Artifact struct {
	ID            uuid.UUID
	FormatVersion int
	TrainedAt     time.Time
	FeatureNames  []string
	Predictor     Predictor
	Preprocessor  Preprocessor

	// Populated by the training use case when a held-out split was scored.
	TrainRows int
	TestRows  int
	Accuracy  float64
}

// NewArtifact bundles a freshly trained predictor with its preprocessor.
func NewArtifact(predictor Predictor, prep Preprocessor) (*Artifact, error) {
	a := &Artifact{
		ID:            uuid.New(),
		FormatVersion: ArtifactFormatVersion,
		TrainedAt:     time.Now().UTC(),
		FeatureNames:  slices.Clone(FeatureColumns),
		Predictor:     predictor,
		Preprocessor:  prep,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks that every part of the bundle agrees on the feature layout.
func (a *Artifact) Validate() error {
	if a.FormatVersion != ArtifactFormatVersion {
		return fmt.Errorf("unsupported artifact format version %d", a.FormatVersion)
	}
	if a.Predictor == nil {
		return fmt.Errorf("artifact has no predictor")
	}
	if !slices.Equal(a.FeatureNames, FeatureColumns) {
		return &FeatureMismatchError{Expected: slices.Clone(FeatureColumns), Got: slices.Clone(a.FeatureNames)}
	}
	if a.Predictor.NumFeatures() != len(a.FeatureNames) {
		return &FeatureMismatchError{
			Reason: fmt.Sprintf("predictor expects %d features, artifact lists %d",
				a.Predictor.NumFeatures(), len(a.FeatureNames)),
		}
	}
	return a.Preprocessor.Validate()
}
