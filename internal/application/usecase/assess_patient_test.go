package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/event"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	"github.com/mehdighelich1379/Heart-Disease/pkg/events"
)

func validAssessRequest() dto.AssessPatientRequest {
	return dto.AssessPatientRequest{
		TenantID:   uuid.New(),
		SubjectRef: "mrn-1001",
		Patient:    dto.PatientInputFromModel(model.SamplePatientRecord()),
	}
}

func newAssessPatient(t *testing.T, repo *mockAssessmentRepository, pub *mockEventPublisher, m *mockScoringModel, metrics *mockMetrics) *usecase.AssessPatient {
	t.Helper()
	normalizer, err := service.NewFeatureNormalizer(valueobject.FeatureSetRaw, nil)
	require.NoError(t, err)
	assessor, err := service.NewAssessor(normalizer, m)
	require.NoError(t, err)
	classifier := service.NewClassifier(valueobject.BannerPolicyTernary)
	if metrics == nil {
		return usecase.NewAssessPatient(repo, pub, assessor, classifier, nil)
	}
	return usecase.NewAssessPatient(repo, pub, assessor, classifier, metrics)
}

func TestAssessPatient_Execute(t *testing.T) {
	t.Run("successfully assesses a low-risk patient", func(t *testing.T) {
		repo := &mockAssessmentRepository{}
		publisher := &mockEventPublisher{}
		metrics := &mockMetrics{}
		uc := newAssessPatient(t, repo, publisher, newMockModel(0.2), metrics)

		req := validAssessRequest()
		resp, err := uc.Execute(context.Background(), req)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.Equal(t, req.TenantID, resp.TenantID)
		assert.Equal(t, "mrn-1001", resp.SubjectRef)
		assert.Equal(t, "mock-model", resp.ModelName)
		assert.Equal(t, "low", resp.Explanation.SummaryTier)
		assert.Equal(t, "low", resp.Explanation.BannerTier)
		assert.Equal(t, service.SummaryLow, resp.Explanation.SummaryMessage)
		assert.Equal(t, "20.0", resp.RiskPercent)
		assert.NotNil(t, repo.savedAssessment)
		require.Len(t, publisher.publishedEvents, 1)
		assert.Equal(t, event.EventTypeAssessmentCompleted, publisher.publishedEvents[0].EventType())
		require.Len(t, metrics.assessments, 1)
		assert.Equal(t, recordedAssessment{tier: "low", policy: "ternary", probability: 0.2}, metrics.assessments[0])
	})

	t.Run("high probability publishes high risk event", func(t *testing.T) {
		publisher := &mockEventPublisher{}
		uc := newAssessPatient(t, &mockAssessmentRepository{}, publisher, newMockModel(0.93), nil)

		resp, err := uc.Execute(context.Background(), validAssessRequest())

		require.NoError(t, err)
		assert.Equal(t, "high", resp.Explanation.SummaryTier)
		require.Len(t, publisher.publishedEvents, 2)
		assert.Equal(t, event.EventTypeHighRiskDetected, publisher.publishedEvents[1].EventType())
	})

	t.Run("per-request binary policy", func(t *testing.T) {
		uc := newAssessPatient(t, &mockAssessmentRepository{}, &mockEventPublisher{}, newMockModel(0.55), nil)

		req := validAssessRequest()
		req.Policy = "binary"
		resp, err := uc.Execute(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "binary", resp.Explanation.Policy)
		assert.Equal(t, "high", resp.Explanation.BannerTier)
		assert.Equal(t, "low", resp.Explanation.SummaryTier)
	})

	t.Run("rejects unknown policy", func(t *testing.T) {
		m := newMockModel(0.5)
		uc := newAssessPatient(t, &mockAssessmentRepository{}, &mockEventPublisher{}, m, nil)

		req := validAssessRequest()
		req.Policy = "quaternary"
		_, err := uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrValidation)
		assert.Zero(t, m.calls)
	})

	t.Run("fails with missing patient fields", func(t *testing.T) {
		repo := &mockAssessmentRepository{}
		m := newMockModel(0.5)
		uc := newAssessPatient(t, repo, &mockEventPublisher{}, m, nil)

		req := validAssessRequest()
		req.Patient.Thal = nil
		_, err := uc.Execute(context.Background(), req)

		assert.ErrorIs(t, err, model.ErrValidation)
		assert.Zero(t, m.calls)
		assert.Nil(t, repo.savedAssessment)
	})

	t.Run("scoring failure is surfaced and counted", func(t *testing.T) {
		repo := &mockAssessmentRepository{}
		metrics := &mockMetrics{}
		m := newMockModel(0)
		m.err = fmt.Errorf("connection refused")
		uc := newAssessPatient(t, repo, &mockEventPublisher{}, m, metrics)

		_, err := uc.Execute(context.Background(), validAssessRequest())

		assert.ErrorIs(t, err, model.ErrScoringUnavailable)
		assert.Nil(t, repo.savedAssessment)
		assert.Equal(t, []string{"scoring_unavailable"}, metrics.failures)
	})

	t.Run("fails when repository save fails", func(t *testing.T) {
		repo := &mockAssessmentRepository{
			saveFunc: func(_ context.Context, _ *model.RiskAssessment) error {
				return fmt.Errorf("database connection lost")
			},
		}
		uc := newAssessPatient(t, repo, &mockEventPublisher{}, newMockModel(0.3), nil)

		_, err := uc.Execute(context.Background(), validAssessRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save assessment")
	})

	t.Run("fails when event publishing fails", func(t *testing.T) {
		publisher := &mockEventPublisher{
			publishFunc: func(_ context.Context, _ ...events.DomainEvent) error {
				return fmt.Errorf("kafka unavailable")
			},
		}
		uc := newAssessPatient(t, &mockAssessmentRepository{}, publisher, newMockModel(0.3), nil)

		_, err := uc.Execute(context.Background(), validAssessRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish events")
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		uc := newAssessPatient(t, &mockAssessmentRepository{}, &mockEventPublisher{}, newMockModel(0.3), nil)

		req := validAssessRequest()
		req.TenantID = uuid.Nil
		_, err := uc.Execute(context.Background(), req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create assessment")
	})
}
