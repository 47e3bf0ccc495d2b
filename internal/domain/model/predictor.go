package model

// Predictor is a fitted binary classifier over scaled feature vectors.
// Implementations must be safe for concurrent use once fitted.
type Predictor interface {
	// PredictProba returns [P(benign), P(threat)] for one vector.
	PredictProba(x []float64) []float64
	// FeatureImportances returns one non-negative score per feature, summing to 1.
	FeatureImportances() []float64
	// NumFeatures returns the vector width the predictor was fitted on.
	NumFeatures() int
}
