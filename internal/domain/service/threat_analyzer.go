package service

import (
	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// ThreatAnalyzer produces one verdict per record by running the rule matcher
// and risk scorer on the raw record and the classifier on its feature vector.
type ThreatAnalyzer struct {
	scorer     *RiskScorer
	matcher    *RuleMatcher
	engineer   *FeatureEngineer
	classifier *ThreatClassifier
}

// NewThreatAnalyzer creates an analyzer serving the given classifier.
func NewThreatAnalyzer(classifier *ThreatClassifier) *ThreatAnalyzer {
	scorer := NewRiskScorer()
	return &ThreatAnalyzer{
		scorer:     scorer,
		matcher:    NewRuleMatcher(),
		engineer:   NewFeatureEngineer(scorer),
		classifier: classifier,
	}
}

// Analyze returns the verdict for r. Any failure is returned as an
// AnalysisError and no verdict is produced.
func (a *ThreatAnalyzer) Analyze(r model.Record) (*model.ThreatVerdict, error) {
	fail := func(err error) (*model.ThreatVerdict, error) {
		return nil, &model.AnalysisError{SessionID: r.SessionID, Err: err}
	}

	score, err := a.scorer.Score(r)
	if err != nil {
		return fail(err)
	}
	match := a.matcher.Classify(r)

	prep, err := a.classifier.Preprocessor()
	if err != nil {
		return fail(err)
	}
	vector, err := a.engineer.Transform(r, prep)
	if err != nil {
		return fail(err)
	}
	predictions, err := a.classifier.PredictWithConfidence([][]float64{vector})
	if err != nil {
		return fail(err)
	}
	p := predictions[0]

	verdict, err := model.NewThreatVerdict(
		r.SessionID,
		match.AttackType,
		match.Confidence,
		score,
		Indicators(r),
		p.Class,
		p.Probability,
	)
	if err != nil {
		return fail(err)
	}
	return verdict, nil
}
