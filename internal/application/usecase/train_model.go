package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/domain/port"
	"github.com/Emmyme/hids-cli/internal/domain/service"
)

var classLabels = [2]string{"no_attack", "attack"}

// TrainModel is the use case for fitting, evaluating and saving a model.
type TrainModel struct {
	engineer   *service.FeatureEngineer
	classifier *service.ThreatClassifier
	split      port.SplitFunc
	logger     *slog.Logger
}

// NewTrainModel creates a new TrainModel use case.
func NewTrainModel(
	engineer *service.FeatureEngineer,
	classifier *service.ThreatClassifier,
	split port.SplitFunc,
	logger *slog.Logger,
) *TrainModel {
	return &TrainModel{
		engineer:   engineer,
		classifier: classifier,
		split:      split,
		logger:     logger,
	}
}

// Execute loads the labelled dataset, fits the preprocessor, trains on the
// training split, scores the held-out split and saves the artifact.
func (uc *TrainModel) Execute(ctx context.Context, source port.RecordSource, req dto.TrainModelRequest) (dto.TrainModelResponse, error) {
	// 1. Load and fit the preprocessing components.
	records, err := source.Records(ctx)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to load dataset: %w", err)
	}
	set, err := uc.engineer.FitTransform(records)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to prepare features: %w", err)
	}

	// 2. Split and train.
	trainIdx, testIdx, err := uc.split(len(set.Labels), req.TestSize, req.Seed)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to split dataset: %w", err)
	}
	trainX, trainY := selectRows(set.Features, set.Labels, trainIdx)
	testX, testY := selectRows(set.Features, set.Labels, testIdx)

	uc.logger.InfoContext(ctx, "dataset prepared",
		"rows", len(records),
		"train_rows", len(trainIdx),
		"test_rows", len(testIdx),
	)

	if err := uc.classifier.Train(ctx, trainX, trainY); err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to train model: %w", err)
	}

	// 3. Evaluate on the held-out rows.
	eval, err := uc.classifier.Evaluate(testX, testY)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to evaluate model: %w", err)
	}

	// 4. Persist model, encoder and scaler together.
	artifact, err := uc.classifier.Save(ctx, req.ModelPath, set.Preprocessor,
		service.WithEvaluation(len(trainIdx), len(testIdx), eval.Accuracy))
	if err != nil {
		return dto.TrainModelResponse{}, err
	}

	scores, err := uc.classifier.FeatureImportance()
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to compute feature importance: %w", err)
	}
	if req.TopFeatures > 0 && len(scores) > req.TopFeatures {
		scores = scores[:req.TopFeatures]
	}

	resp := dto.TrainModelResponse{
		ArtifactID:  artifact.ID,
		ModelPath:   req.ModelPath,
		TrainRows:   len(trainIdx),
		TestRows:    len(testIdx),
		Accuracy:    eval.Accuracy,
		MacroAvg:    classMetrics("macro avg", eval.MacroAvg),
		WeightedAvg: classMetrics("weighted avg", eval.WeightedAvg),
	}
	for _, c := range eval.Classes {
		resp.Classes = append(resp.Classes, classMetrics(classLabels[c.Label], c))
	}
	for _, s := range scores {
		resp.TopFeatures = append(resp.TopFeatures, dto.FeatureImportance{Name: s.Name, Importance: s.Importance})
	}

	uc.logger.InfoContext(ctx, "model trained",
		"artifact_id", artifact.ID,
		"accuracy", eval.Accuracy,
		"path", req.ModelPath,
	)
	return resp, nil
}

func classMetrics(label string, r service.ClassReport) dto.ClassMetrics {
	return dto.ClassMetrics{
		Label:     label,
		Precision: r.Precision,
		Recall:    r.Recall,
		F1:        r.F1,
		Support:   r.Support,
	}
}

func selectRows(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	outX := make([][]float64, len(idx))
	outY := make([]int, len(idx))
	for i, j := range idx {
		outX[i] = X[j]
		outY[i] = y[j]
	}
	return outX, outY
}
