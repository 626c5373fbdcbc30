package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/port"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

var tracer = otel.Tracer("github.com/mehdighelich1379/Heart-Disease/internal/application/usecase")

// AssessPatient is the use case for scoring, explaining and storing a patient
// record.
type AssessPatient struct {
	repo       port.AssessmentRepository
	publisher  port.EventPublisher
	metrics    port.MetricsRecorder
	assessor   *service.Assessor
	classifier *service.Classifier
}

// NewAssessPatient creates a new AssessPatient use case. metrics may be nil.
func NewAssessPatient(
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	assessor *service.Assessor,
	classifier *service.Classifier,
	metrics port.MetricsRecorder,
) *AssessPatient {
	return &AssessPatient{
		repo:       repo,
		publisher:  publisher,
		assessor:   assessor,
		classifier: classifier,
		metrics:    metrics,
	}
}

// Execute validates the record, scores it, classifies the result, persists
// the assessment and publishes its events.
func (uc *AssessPatient) Execute(ctx context.Context, req dto.AssessPatientRequest) (dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "AssessPatient",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("heart.tenant_id", req.TenantID.String())),
	)
	defer span.End()

	resp, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.AssessmentResponse{}, err
	}
	span.SetAttributes(
		attribute.String("heart.summary_tier", resp.Explanation.SummaryTier),
		attribute.String("heart.model", resp.ModelName),
	)
	return resp, nil
}

func (uc *AssessPatient) execute(ctx context.Context, req dto.AssessPatientRequest) (dto.AssessmentResponse, error) {
	// 1. Presence and domain validation.
	record, err := req.Patient.ToModel()
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	classifier, err := uc.classifierFor(req.Policy)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	// 2. Score with the configured model.
	probability, _, err := uc.assessor.Score(ctx, record)
	if err != nil {
		uc.recordFailure(ctx, err)
		return dto.AssessmentResponse{}, err
	}

	// 3. Classify and explain.
	explanation, err := classifier.Classify(record, probability)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	// 4. Build the aggregate.
	assessment, err := model.NewRiskAssessment(
		req.TenantID,
		req.SubjectRef,
		record,
		probability,
		uc.assessor.ModelName(),
		explanation,
	)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to create assessment: %w", err)
	}

	// 5. Persist the assessment.
	if err := uc.repo.Save(ctx, assessment); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	// 6. Publish domain events.
	evts := assessment.DomainEvents()
	if len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	if uc.metrics != nil {
		uc.metrics.RecordAssessment(ctx, explanation.SummaryTier.String(), explanation.Policy.String(), probability)
	}

	return dto.FromModel(assessment), nil
}

func (uc *AssessPatient) classifierFor(policy string) (*service.Classifier, error) {
	if policy == "" {
		return uc.classifier, nil
	}
	p, err := valueobject.BannerPolicyFromString(policy)
	if err != nil {
		return nil, model.NewValidationError("banner_policy", "must be ternary or binary, got %q", policy)
	}
	return uc.classifier.WithPolicy(p), nil
}

func (uc *AssessPatient) recordFailure(ctx context.Context, err error) {
	if uc.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, model.ErrScoringUnavailable):
		uc.metrics.RecordScoringFailure(ctx, "scoring_unavailable")
	case errors.Is(err, model.ErrFeatureOrderMismatch):
		uc.metrics.RecordScoringFailure(ctx, "feature_order_mismatch")
	}
}
