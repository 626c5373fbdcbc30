package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/pkg/events"
)

// AssessmentRepository defines the persistence port for risk assessments.
type AssessmentRepository interface {
	// Save persists a new risk assessment.
	Save(ctx context.Context, assessment *model.RiskAssessment) error

	// FindByID retrieves an assessment by its unique identifier. It returns
	// model.ErrAssessmentNotFound when no such assessment exists for the tenant.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error)

	// ListBySubject returns assessments for a subject reference, newest first.
	// An empty subjectRef lists every assessment of the tenant.
	ListBySubject(ctx context.Context, tenantID uuid.UUID, subjectRef string, limit, offset int) ([]*model.RiskAssessment, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// ScoringModel is the opaque probability function. Implementations declare the
// column layout they were built for; the caller must feed vectors in exactly
// that order.
type ScoringModel interface {
	Name() string
	FeatureColumns() []string
	Predict(ctx context.Context, features model.FeatureVector) (float64, error)
}

// MetricsRecorder receives assessment outcomes for observability.
type MetricsRecorder interface {
	RecordAssessment(ctx context.Context, summaryTier, policy string, probability float64)
	RecordScoringFailure(ctx context.Context, reason string)
}
