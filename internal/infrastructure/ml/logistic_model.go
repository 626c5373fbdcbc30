package ml

import (
	"context"
	"fmt"
	"math"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
)

// LogisticModel scores sigmoid(intercept + coefficients·x) in-process.
type LogisticModel struct {
	name         string
	columns      []string
	coefficients []float64
	intercept    float64
	invert       bool
}

// NewLogisticModel builds a scorer from a manifest that carries logistic
// weights.
func NewLogisticModel(m *Manifest) (*LogisticModel, error) {
	if m == nil || m.Logistic == nil {
		return nil, fmt.Errorf("manifest has no logistic parameters")
	}
	if len(m.Logistic.Coefficients) != len(m.Columns) {
		return nil, fmt.Errorf("manifest has %d coefficients for %d columns",
			len(m.Logistic.Coefficients), len(m.Columns))
	}
	return &LogisticModel{
		name:         m.Name,
		columns:      append([]string(nil), m.Columns...),
		coefficients: append([]float64(nil), m.Logistic.Coefficients...),
		intercept:    m.Logistic.Intercept,
		invert:       m.InvertOutput,
	}, nil
}

func (l *LogisticModel) Name() string { return l.name }

func (l *LogisticModel) FeatureColumns() []string { return l.columns }

// Predict evaluates the logistic function on the vector.
func (l *LogisticModel) Predict(ctx context.Context, features model.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(features.Values) != len(l.coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(l.coefficients), len(features.Values))
	}

	z := l.intercept
	for i, x := range features.Values {
		z += l.coefficients[i] * x
	}
	p := 1 / (1 + math.Exp(-z))
	if l.invert {
		p = 1 - p
	}
	return p, nil
}
