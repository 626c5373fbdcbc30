package ml

import (
	"context"
	"log/slog"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
)

// StubModelClient implements port.ScoringModel with a fixed probability. It
// is meant for development and demos where no trained model is deployed.
type StubModelClient struct {
	logger      *slog.Logger
	columns     []string
	probability float64
}

// NewStubModelClient creates a stub that always answers probability and
// declares the given column layout.
func NewStubModelClient(columns []string, probability float64, logger *slog.Logger) *StubModelClient {
	return &StubModelClient{
		columns:     append([]string(nil), columns...),
		probability: probability,
		logger:      logger,
	}
}

func (c *StubModelClient) Name() string { return "stub" }

func (c *StubModelClient) FeatureColumns() []string { return c.columns }

// Predict returns the configured probability.
func (c *StubModelClient) Predict(_ context.Context, features model.FeatureVector) (float64, error) {
	c.logger.Debug("stub model prediction requested",
		slog.Int("feature_count", features.Len()),
		slog.Float64("probability", c.probability),
	)
	return c.probability, nil
}
