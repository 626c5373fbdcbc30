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
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

func storedAssessment(t *testing.T, tenantID uuid.UUID, subjectRef string, p float64) *model.RiskAssessment {
	t.Helper()
	exp, err := service.NewClassifier(valueobject.BannerPolicyTernary).Classify(model.SamplePatientRecord(), p)
	require.NoError(t, err)
	a, err := model.NewRiskAssessment(tenantID, subjectRef, model.SamplePatientRecord(), p, "mock-model", exp)
	require.NoError(t, err)
	a.DomainEvents()
	return a
}

func TestGetAssessment_Execute(t *testing.T) {
	t.Run("returns the stored assessment", func(t *testing.T) {
		tenantID := uuid.New()
		stored := storedAssessment(t, tenantID, "mrn-7", 0.65)
		repo := &mockAssessmentRepository{
			findByIDFunc: func(_ context.Context, tid, id uuid.UUID) (*model.RiskAssessment, error) {
				if tid == tenantID && id == stored.ID() {
					return stored, nil
				}
				return nil, model.ErrAssessmentNotFound
			},
		}
		uc := usecase.NewGetAssessment(repo)

		resp, err := uc.Execute(context.Background(), dto.GetAssessmentRequest{TenantID: tenantID, AssessmentID: stored.ID()})

		require.NoError(t, err)
		assert.Equal(t, stored.ID(), resp.ID)
		assert.Equal(t, "medium", resp.Explanation.SummaryTier)
		assert.Equal(t, "mrn-7", resp.SubjectRef)
	})

	t.Run("not found", func(t *testing.T) {
		uc := usecase.NewGetAssessment(&mockAssessmentRepository{})

		_, err := uc.Execute(context.Background(), dto.GetAssessmentRequest{TenantID: uuid.New(), AssessmentID: uuid.New()})

		assert.ErrorIs(t, err, model.ErrAssessmentNotFound)
	})

	t.Run("nil result is reported as not found", func(t *testing.T) {
		repo := &mockAssessmentRepository{
			findByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*model.RiskAssessment, error) { return nil, nil },
		}
		_, err := usecase.NewGetAssessment(repo).Execute(context.Background(), dto.GetAssessmentRequest{TenantID: uuid.New(), AssessmentID: uuid.New()})

		assert.ErrorIs(t, err, model.ErrAssessmentNotFound)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		repo := &mockAssessmentRepository{
			findByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*model.RiskAssessment, error) {
				return nil, fmt.Errorf("timeout")
			},
		}
		_, err := usecase.NewGetAssessment(repo).Execute(context.Background(), dto.GetAssessmentRequest{TenantID: uuid.New(), AssessmentID: uuid.New()})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to find assessment")
		assert.NotErrorIs(t, err, model.ErrAssessmentNotFound)
	})
}

func TestListAssessments_Execute(t *testing.T) {
	t.Run("applies default limit and maps results", func(t *testing.T) {
		tenantID := uuid.New()
		var gotLimit, gotOffset int
		var gotSubject string
		repo := &mockAssessmentRepository{
			listFunc: func(_ context.Context, _ uuid.UUID, subjectRef string, limit, offset int) ([]*model.RiskAssessment, error) {
				gotSubject, gotLimit, gotOffset = subjectRef, limit, offset
				return []*model.RiskAssessment{
					storedAssessment(t, tenantID, "mrn-1", 0.9),
					storedAssessment(t, tenantID, "mrn-1", 0.1),
				}, nil
			},
		}

		resp, err := usecase.NewListAssessments(repo).Execute(context.Background(), dto.ListAssessmentsRequest{
			TenantID:   tenantID,
			SubjectRef: "mrn-1",
			Offset:     4,
		})

		require.NoError(t, err)
		assert.Equal(t, "mrn-1", gotSubject)
		assert.Equal(t, 20, gotLimit)
		assert.Equal(t, 4, gotOffset)
		require.Len(t, resp.Assessments, 2)
		assert.Equal(t, "high", resp.Assessments[0].Explanation.SummaryTier)
		assert.Equal(t, 20, resp.Limit)
	})

	t.Run("caps limit", func(t *testing.T) {
		var gotLimit int
		repo := &mockAssessmentRepository{
			listFunc: func(_ context.Context, _ uuid.UUID, _ string, limit, _ int) ([]*model.RiskAssessment, error) {
				gotLimit = limit
				return nil, nil
			},
		}

		resp, err := usecase.NewListAssessments(repo).Execute(context.Background(), dto.ListAssessmentsRequest{TenantID: uuid.New(), Limit: 5000})

		require.NoError(t, err)
		assert.Equal(t, 100, gotLimit)
		assert.Empty(t, resp.Assessments)
	})

	t.Run("rejects negative offset", func(t *testing.T) {
		_, err := usecase.NewListAssessments(&mockAssessmentRepository{}).Execute(context.Background(), dto.ListAssessmentsRequest{Offset: -1})
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestComputeFeatures_Execute(t *testing.T) {
	n, err := service.NewFeatureNormalizer(valueobject.FeatureSetEngineered, nil)
	require.NoError(t, err)
	uc := usecase.NewComputeFeatures(n)

	resp, err := uc.Execute(context.Background(), dto.ComputeFeaturesRequest{
		Patient: dto.PatientInputFromModel(model.SamplePatientRecord()),
	})

	require.NoError(t, err)
	assert.Equal(t, "engineered", resp.FeatureSet)
	assert.Len(t, resp.Columns, 21)
	assert.Len(t, resp.Values, 21)

	_, err = uc.Execute(context.Background(), dto.ComputeFeaturesRequest{})
	assert.ErrorIs(t, err, model.ErrValidation)
}
