package usecase_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/pkg/events"
)

// --- Mock implementations ---

type mockAssessmentRepository struct {
	savedAssessment *model.RiskAssessment
	saveFunc        func(ctx context.Context, assessment *model.RiskAssessment) error
	findByIDFunc    func(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error)
	listFunc        func(ctx context.Context, tenantID uuid.UUID, subjectRef string, limit, offset int) ([]*model.RiskAssessment, error)
}

func (m *mockAssessmentRepository) Save(ctx context.Context, assessment *model.RiskAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, assessment)
	}
	m.savedAssessment = assessment
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return nil, model.ErrAssessmentNotFound
}

func (m *mockAssessmentRepository) ListBySubject(ctx context.Context, tenantID uuid.UUID, subjectRef string, limit, offset int) ([]*model.RiskAssessment, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID, subjectRef, limit, offset)
	}
	return nil, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
	publishedEvents []events.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockScoringModel struct {
	err         error
	columns     []string
	probability float64
	calls       int
}

func newMockModel(p float64) *mockScoringModel {
	return &mockScoringModel{columns: service.RawColumns(), probability: p}
}

func (m *mockScoringModel) Name() string             { return "mock-model" }
func (m *mockScoringModel) FeatureColumns() []string { return m.columns }

func (m *mockScoringModel) Predict(_ context.Context, _ model.FeatureVector) (float64, error) {
	m.calls++
	return m.probability, m.err
}

type recordedAssessment struct {
	tier        string
	policy      string
	probability float64
}

type mockMetrics struct {
	assessments []recordedAssessment
	failures    []string
	mu          sync.Mutex
}

func (m *mockMetrics) RecordAssessment(_ context.Context, tier, policy string, p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments = append(m.assessments, recordedAssessment{tier: tier, policy: policy, probability: p})
}

func (m *mockMetrics) RecordScoringFailure(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, reason)
}
