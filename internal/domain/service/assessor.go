package service

import (
	"context"
	"fmt"
	"math"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/port"
)

// Assessor turns a patient record into a probability using the configured
// scoring model. Model failures are surfaced, never replaced by a fallback.
type Assessor struct {
	normalizer *FeatureNormalizer
	model      port.ScoringModel
}

// NewAssessor checks that the normalizer and the model agree on the column
// layout before returning an Assessor.
func NewAssessor(normalizer *FeatureNormalizer, scoring port.ScoringModel) (*Assessor, error) {
	if normalizer == nil || scoring == nil {
		return nil, fmt.Errorf("normalizer and scoring model are required")
	}
	if err := normalizer.VerifyColumns(scoring.FeatureColumns()); err != nil {
		return nil, err
	}
	return &Assessor{normalizer: normalizer, model: scoring}, nil
}

// ModelName returns the name of the scoring model.
func (a *Assessor) ModelName() string { return a.model.Name() }

// Normalizer returns the feature normalizer.
func (a *Assessor) Normalizer() *FeatureNormalizer { return a.normalizer }

// Score normalizes the record and asks the model for a probability.
func (a *Assessor) Score(ctx context.Context, r model.PatientRecord) (float64, model.FeatureVector, error) {
	vector, err := a.normalizer.Normalize(r)
	if err != nil {
		return 0, model.FeatureVector{}, err
	}
	if err := a.normalizer.VerifyColumns(a.model.FeatureColumns()); err != nil {
		return 0, vector, err
	}

	p, err := a.model.Predict(ctx, vector)
	if err != nil {
		return 0, vector, &model.ScoringUnavailableError{Model: a.model.Name(), Cause: err}
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, vector, &model.ScoringUnavailableError{
			Model: a.model.Name(),
			Cause: fmt.Errorf("model returned probability %v outside [0, 1]", p),
		}
	}
	return p, vector, nil
}
