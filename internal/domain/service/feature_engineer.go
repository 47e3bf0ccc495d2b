package service

import (
	"errors"
	"fmt"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// TrainingSet is the output of FitTransform: the scaled feature matrix in
// model.FeatureColumns order, the labels, and the preprocessor fitted on it.
type TrainingSet struct {
	Features     [][]float64
	Labels       []int
	Preprocessor model.Preprocessor
}

// FeatureEngineer derives, encodes and scales record features. FitTransform
// and Transform share one derivation so the column order cannot diverge.
type FeatureEngineer struct {
	scorer *RiskScorer
}

// NewFeatureEngineer creates a FeatureEngineer that scores records with scorer.
func NewFeatureEngineer(scorer *RiskScorer) *FeatureEngineer {
	return &FeatureEngineer{scorer: scorer}
}

// FitTransform fits the category encoder and scaler over a labelled dataset
// and returns the scaled matrix.
func (f *FeatureEngineer) FitTransform(records []model.Record) (*TrainingSet, error) {
	if len(records) == 0 {
		return nil, &model.SchemaError{Reason: "dataset is empty"}
	}

	labels := make([]int, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, atRow(err, i+1)
		}
		if !r.HasLabel() {
			return nil, &model.SchemaError{
				Reason: fmt.Sprintf("row %d has no %s label", i+1, model.ColumnAttackDetected),
			}
		}
		labels[i] = *r.AttackDetected
	}

	encoder, err := model.FitCategoryEncoder(records)
	if err != nil {
		return nil, fmt.Errorf("failed to fit category encoder: %w", err)
	}

	raw := make([][]float64, len(records))
	for i, r := range records {
		raw[i], err = f.rawVector(r, encoder)
		if err != nil {
			return nil, err
		}
	}

	scaler, err := model.FitScaler(model.FeatureColumns, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to fit scaler: %w", err)
	}

	scaled := make([][]float64, len(raw))
	for i, row := range raw {
		scaled[i], err = scaler.Apply(model.FeatureColumns, row)
		if err != nil {
			return nil, err
		}
	}

	return &TrainingSet{
		Features:     scaled,
		Labels:       labels,
		Preprocessor: model.Preprocessor{Encoder: encoder, Scaler: scaler},
	}, nil
}

// Transform builds the scaled feature vector of one record with a
// preprocessor fitted earlier. The preprocessor is never refit.
func (f *FeatureEngineer) Transform(r model.Record, prep model.Preprocessor) ([]float64, error) {
	if prep.Encoder == nil || prep.Scaler == nil {
		return nil, &model.FeatureMismatchError{Reason: "preprocessor has not been fitted"}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	raw, err := f.rawVector(r, prep.Encoder)
	if err != nil {
		return nil, err
	}
	return prep.Scaler.Apply(model.FeatureColumns, raw)
}

// rawVector lays out r in model.FeatureColumns order, before scaling.
func (f *FeatureEngineer) rawVector(r model.Record, encoder *model.CategoryEncoder) ([]float64, error) {
	protocol, err := encoder.Encode(model.ColumnProtocolType, r.ProtocolType)
	if err != nil {
		return nil, err
	}
	encryption, err := encoder.Encode(model.ColumnEncryptionUsed, r.EncryptionUsed)
	if err != nil {
		return nil, err
	}
	browser, err := encoder.Encode(model.ColumnBrowserType, r.BrowserType)
	if err != nil {
		return nil, err
	}

	return []float64{
		float64(r.NetworkPacketSize),
		float64(protocol),
		float64(r.LoginAttempts),
		r.SessionDuration,
		float64(encryption),
		r.IPReputationScore,
		float64(r.FailedLogins),
		float64(browser),
		float64(r.UnusualTimeAccess),
		float64(f.scorer.score(r)),
		boolFeature(r.NetworkPacketSize > 600),
		boolFeature(r.FailedLogins > 2),
		boolFeature(r.IPReputationScore < 0.3),
		boolFeature(r.SessionDuration > 1000),
	}, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// atRow stamps a 1-based row number onto a MalformedRecordError.
func atRow(err error, row int) error {
	var malformed *model.MalformedRecordError
	if errors.As(err, &malformed) {
		stamped := *malformed
		stamped.Row = row
		return &stamped
	}
	return err
}
