package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/mehdighelich1379/Heart-Disease/assessment"

// AssessmentMetrics implements port.MetricsRecorder on an OpenTelemetry meter.
type AssessmentMetrics struct {
	assessments     metric.Int64Counter
	scoringFailures metric.Int64Counter
	probability     metric.Float64Histogram
}

// NewAssessmentMetrics registers the assessment instruments on provider.
func NewAssessmentMetrics(provider metric.MeterProvider) (*AssessmentMetrics, error) {
	meter := provider.Meter(meterName)

	assessments, err := meter.Int64Counter("heart_assessments",
		metric.WithDescription("Completed risk assessments by summary tier and banner policy."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessments counter: %w", err)
	}

	failures, err := meter.Int64Counter("heart_scoring_failures",
		metric.WithDescription("Assessments that could not be scored."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring failures counter: %w", err)
	}

	probability, err := meter.Float64Histogram("heart_probability",
		metric.WithDescription("Distribution of model probabilities."),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create probability histogram: %w", err)
	}

	return &AssessmentMetrics{
		assessments:     assessments,
		scoringFailures: failures,
		probability:     probability,
	}, nil
}

func (m *AssessmentMetrics) RecordAssessment(ctx context.Context, summaryTier, policy string, p float64) {
	m.assessments.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", summaryTier),
		attribute.String("policy", policy),
	))
	m.probability.Record(ctx, p, metric.WithAttributes(attribute.String("policy", policy)))
}

func (m *AssessmentMetrics) RecordScoringFailure(ctx context.Context, reason string) {
	m.scoringFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
