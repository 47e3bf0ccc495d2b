package dto

import (
	"time"

	"github.com/google/uuid"
)

// TrainModelRequest is the input DTO for the TrainModel use case.
type TrainModelRequest struct {
	ModelPath string  `json:"model_path"`
	TestSize  float64 `json:"test_size"`
	Seed      uint64  `json:"seed"`
	// TopFeatures limits the importance listing; 0 returns all.
	TopFeatures int `json:"top_features"`
}

// ClassMetrics is one row of a classification report.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// FeatureImportance pairs a feature with its importance.
type FeatureImportance struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// TrainModelResponse reports the held-out evaluation of a freshly saved model.
type TrainModelResponse struct {
	Classes     []ClassMetrics      `json:"classes"`
	TopFeatures []FeatureImportance `json:"top_features"`
	MacroAvg    ClassMetrics        `json:"macro_avg"`
	WeightedAvg ClassMetrics        `json:"weighted_avg"`
	ModelPath   string              `json:"model_path"`
	ArtifactID  uuid.UUID           `json:"artifact_id"`
	Accuracy    float64             `json:"accuracy"`
	TrainRows   int                 `json:"train_rows"`
	TestRows    int                 `json:"test_rows"`
}

// ModelInfoResponse describes the saved artifact, if any.
type ModelInfoResponse struct {
	TrainedAt     time.Time `json:"trained_at"`
	FeatureNames  []string  `json:"feature_names"`
	ModelPath     string    `json:"model_path"`
	ArtifactID    uuid.UUID `json:"artifact_id"`
	Accuracy      float64   `json:"accuracy"`
	FormatVersion int       `json:"format_version"`
	TrainRows     int       `json:"train_rows"`
	TestRows      int       `json:"test_rows"`
	Exists        bool      `json:"exists"`
}

// RuleResponse describes one attack rule in priority order.
type RuleResponse struct {
	AttackType  string `json:"attack_type"`
	Confidence  string `json:"confidence"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// GenerateDatasetRequest is the input DTO for the GenerateDataset use case.
type GenerateDatasetRequest struct {
	Rows int `json:"rows"`
}

// GenerateDatasetResponse reports what was generated.
type GenerateDatasetResponse struct {
	Destination string `json:"destination"`
	Rows        int    `json:"rows"`
	Threats     int    `json:"threats"`
}
