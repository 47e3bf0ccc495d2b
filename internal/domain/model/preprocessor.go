package model

import (
	"fmt"
	"slices"
)

// Preprocessor bundles the fitted encoder and scaler that turn a Record into
// a model input vector. Both are fitted once at training time.
type Preprocessor struct {
	Encoder *CategoryEncoder
	Scaler  *ScalerState
}

// Validate checks that the preprocessor is complete and laid out for
// FeatureColumns.
func (p Preprocessor) Validate() error {
	if p.Encoder == nil || p.Scaler == nil {
		return fmt.Errorf("preprocessor requires both an encoder and a scaler")
	}
	for _, col := range CategoricalColumns {
		if !slices.Contains(p.Encoder.Columns(), col) {
			return &FeatureMismatchError{Reason: fmt.Sprintf("encoder is missing column %s", col)}
		}
	}
	if !slices.Equal(p.Scaler.Columns(), FeatureColumns) {
		return &FeatureMismatchError{Expected: slices.Clone(FeatureColumns), Got: p.Scaler.Columns()}
	}
	return nil
}
