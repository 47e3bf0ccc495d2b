package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/port"
)

// ClassifierState tags whether a ThreatClassifier can serve predictions.
type ClassifierState int

const (
	StateUntrained ClassifierState = iota
	StateTrained
)

func (s ClassifierState) String() string {
	if s == StateTrained {
		return "trained"
	}
	return "untrained"
}

// Prediction is one row's classification with its probability vector.
type Prediction struct {
	Class       int
	Confidence  float64
	Probability []float64
}

// ClassReport holds the per-class metrics of an evaluation.
type ClassReport struct {
	Label     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluation summarizes classifier performance on a labelled matrix.
type Evaluation struct {
	Accuracy    float64
	Classes     []ClassReport
	MacroAvg    ClassReport
	WeightedAvg ClassReport
	Support     int
}

// FeatureScore pairs a feature name with its importance.
type FeatureScore struct {
	Name       string
	Importance float64
}

// trainedModel is the immutable payload of the trained state. The
// preprocessor and artifact are only known after Save or Load.
type trainedModel struct {
	predictor    model.Predictor
	preprocessor model.Preprocessor
	artifact     *model.Artifact
}

// ThreatClassifier wraps a fitted predictor. It starts untrained and moves to
// the trained state through Train or Load; once trained, the model it serves
// is never mutated, so reads are safe from any goroutine.
type ThreatClassifier struct {
	estimator port.Estimator
	store     port.ArtifactStore
	logger    *slog.Logger
	trained   atomic.Pointer[trainedModel]
}

// NewThreatClassifier creates an untrained classifier.
func NewThreatClassifier(estimator port.Estimator, store port.ArtifactStore, logger *slog.Logger) *ThreatClassifier {
	return &ThreatClassifier{
		estimator: estimator,
		store:     store,
		logger:    logger,
	}
}

// State returns the current state tag.
func (c *ThreatClassifier) State() ClassifierState {
	if c.trained.Load() == nil {
		return StateUntrained
	}
	return StateTrained
}

func (c *ThreatClassifier) current() (*trainedModel, error) {
	m := c.trained.Load()
	if m == nil {
		return nil, model.ErrUntrainedModel
	}
	return m, nil
}

// Train fits the estimator on features (model.FeatureColumns layout) and
// labels in {0,1}.
func (c *ThreatClassifier) Train(ctx context.Context, features [][]float64, labels []int) error {
	if len(features) == 0 {
		return &model.SchemaError{Reason: "cannot train on an empty feature matrix"}
	}
	if len(features) != len(labels) {
		return fmt.Errorf("feature rows (%d) and labels (%d) differ", len(features), len(labels))
	}
	for i, row := range features {
		if len(row) != len(model.FeatureColumns) {
			return &model.FeatureMismatchError{
				Reason: fmt.Sprintf("row %d has %d features, expected %d", i+1, len(row), len(model.FeatureColumns)),
			}
		}
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return fmt.Errorf("label at row %d must be 0 or 1, got %d", i+1, y)
		}
	}

	c.logger.Info("training threat detection model", "rows", len(features), "features", len(model.FeatureColumns))

	predictor, err := c.estimator.Fit(ctx, features, labels)
	if err != nil {
		return fmt.Errorf("failed to fit estimator: %w", err)
	}
	if predictor.NumFeatures() != len(model.FeatureColumns) {
		return &model.FeatureMismatchError{
			Reason: fmt.Sprintf("estimator produced a %d-feature predictor", predictor.NumFeatures()),
		}
	}

	c.trained.Store(&trainedModel{predictor: predictor})
	c.logger.Info("model training completed")
	return nil
}

// PredictProba returns one [P(benign), P(threat)] vector per row.
func (c *ThreatClassifier) PredictProba(features [][]float64) ([][]float64, error) {
	m, err := c.current()
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(features))
	for i, row := range features {
		if len(row) != m.predictor.NumFeatures() {
			return nil, &model.FeatureMismatchError{
				Reason: fmt.Sprintf("row %d has %d features, model expects %d", i+1, len(row), m.predictor.NumFeatures()),
			}
		}
		out[i] = m.predictor.PredictProba(row)
	}
	return out, nil
}

// Predict returns the most probable class of every row. Ties go to class 0.
func (c *ThreatClassifier) Predict(features [][]float64) ([]int, error) {
	probas, err := c.PredictProba(features)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probas))
	for i, p := range probas {
		out[i] = floats.MaxIdx(p)
	}
	return out, nil
}

// PredictWithConfidence returns the class, the largest class probability and
// the full probability vector of every row.
func (c *ThreatClassifier) PredictWithConfidence(features [][]float64) ([]Prediction, error) {
	probas, err := c.PredictProba(features)
	if err != nil {
		return nil, err
	}
	out := make([]Prediction, len(probas))
	for i, p := range probas {
		idx := floats.MaxIdx(p)
		out[i] = Prediction{Class: idx, Confidence: p[idx], Probability: p}
	}
	return out, nil
}

// Evaluate scores predictions against labels. It does not change the model.
func (c *ThreatClassifier) Evaluate(features [][]float64, labels []int) (*Evaluation, error) {
	if len(features) != len(labels) {
		return nil, fmt.Errorf("feature rows (%d) and labels (%d) differ", len(features), len(labels))
	}
	predicted, err := c.Predict(features)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("cannot evaluate on an empty feature matrix")
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("label at row %d must be 0 or 1, got %d", i+1, y)
		}
	}
	return evaluate(labels, predicted), nil
}

func evaluate(labels, predicted []int) *Evaluation {
	var tp, fp, fn, support [2]int
	correct := 0
	for i, y := range labels {
		p := predicted[i]
		support[y]++
		if p == y {
			correct++
			tp[y]++
		} else {
			fp[p]++
			fn[y]++
		}
	}

	eval := &Evaluation{
		Accuracy: float64(correct) / float64(len(labels)),
		Support:  len(labels),
	}
	for class := range 2 {
		report := ClassReport{
			Label:     class,
			Precision: ratio(tp[class], tp[class]+fp[class]),
			Recall:    ratio(tp[class], tp[class]+fn[class]),
			Support:   support[class],
		}
		if report.Precision+report.Recall > 0 {
			report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
		}
		eval.Classes = append(eval.Classes, report)

		eval.MacroAvg.Precision += report.Precision / 2
		eval.MacroAvg.Recall += report.Recall / 2
		eval.MacroAvg.F1 += report.F1 / 2

		w := float64(report.Support) / float64(len(labels))
		eval.WeightedAvg.Precision += report.Precision * w
		eval.WeightedAvg.Recall += report.Recall * w
		eval.WeightedAvg.F1 += report.F1 * w
	}
	eval.MacroAvg.Support = len(labels)
	eval.WeightedAvg.Support = len(labels)
	return eval
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// FeatureImportance returns the predictor's feature importances, highest first.
func (c *ThreatClassifier) FeatureImportance() ([]FeatureScore, error) {
	m, err := c.current()
	if err != nil {
		return nil, err
	}
	importances := m.predictor.FeatureImportances()
	scores := make([]FeatureScore, len(importances))
	for i, imp := range importances {
		scores[i] = FeatureScore{Name: model.FeatureColumns[i], Importance: imp}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Importance > scores[j].Importance
	})
	return scores, nil
}

// ArtifactOption adjusts an artifact before it is saved.
type ArtifactOption func(a *model.Artifact)

// WithEvaluation records the split sizes and held-out accuracy in the artifact.
func WithEvaluation(trainRows, testRows int, accuracy float64) ArtifactOption {
	return func(a *model.Artifact) {
		a.TrainRows = trainRows
		a.TestRows = testRows
		a.Accuracy = accuracy
	}
}

// Save persists the predictor together with the preprocessor it was trained
// behind as one artifact.
func (c *ThreatClassifier) Save(ctx context.Context, path string, prep model.Preprocessor, opts ...ArtifactOption) (*model.Artifact, error) {
	m, err := c.current()
	if err != nil {
		return nil, err
	}

	artifact, err := model.NewArtifact(m.predictor, prep)
	if err != nil {
		return nil, fmt.Errorf("failed to build artifact: %w", err)
	}
	for _, opt := range opts {
		opt(artifact)
	}

	if err := c.store.Save(ctx, path, artifact); err != nil {
		return nil, fmt.Errorf("failed to save artifact: %w", err)
	}

	c.trained.Store(&trainedModel{predictor: m.predictor, preprocessor: prep, artifact: artifact})
	c.logger.Info("model and preprocessing components saved", "path", path, "artifact_id", artifact.ID)
	return artifact, nil
}

// Load restores predictor, encoder and scaler from one artifact. On error the
// classifier keeps its previous state.
func (c *ThreatClassifier) Load(ctx context.Context, path string) error {
	artifact, err := c.store.Load(ctx, path)
	if err != nil {
		return err
	}
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("invalid artifact %s: %w", path, err)
	}

	c.trained.Store(&trainedModel{
		predictor:    artifact.Predictor,
		preprocessor: artifact.Preprocessor,
		artifact:     artifact,
	})
	c.logger.Info("model loaded", "path", path, "artifact_id", artifact.ID, "trained_at", artifact.TrainedAt)
	return nil
}

// Preprocessor returns the encoder and scaler bundled with the served model.
// A model that was trained but not yet saved has none, and is reported as
// ErrUntrainedModel until Save attaches one.
func (c *ThreatClassifier) Preprocessor() (model.Preprocessor, error) {
	m, err := c.current()
	if err != nil {
		return model.Preprocessor{}, err
	}
	if m.preprocessor.Encoder == nil || m.preprocessor.Scaler == nil {
		return model.Preprocessor{}, fmt.Errorf("%w: no preprocessor is attached until the model is saved", model.ErrUntrainedModel)
	}
	return m.preprocessor, nil
}

// Artifact returns the artifact the served model was saved to or loaded from.
func (c *ThreatClassifier) Artifact() (*model.Artifact, error) {
	m, err := c.current()
	if err != nil {
		return nil, err
	}
	if m.artifact == nil {
		return nil, fmt.Errorf("model has not been saved")
	}
	return m.artifact, nil
}

// FeatureNames returns the feature layout the model consumes.
func (c *ThreatClassifier) FeatureNames() []string {
	return slices.Clone(model.FeatureColumns)
}
