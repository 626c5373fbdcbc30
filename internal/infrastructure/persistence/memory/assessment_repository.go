package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
)

// AssessmentRepository is an in-process port.AssessmentRepository, used when
// no database is configured. Contents are lost on restart.
type AssessmentRepository struct {
	byID map[uuid.UUID]model.RiskAssessmentState
	mu   sync.RWMutex
}

// NewAssessmentRepository creates an empty store.
func NewAssessmentRepository() *AssessmentRepository {
	return &AssessmentRepository{byID: make(map[uuid.UUID]model.RiskAssessmentState)}
}

// Save stores a snapshot of the assessment.
func (r *AssessmentRepository) Save(_ context.Context, assessment *model.RiskAssessment) error {
	s := assessment.State()
	s.Explanation.Findings = append([]model.Finding(nil), s.Explanation.Findings...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
	return nil
}

// FindByID returns the assessment or model.ErrAssessmentNotFound.
func (r *AssessmentRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok || s.TenantID != tenantID {
		return nil, model.ErrAssessmentNotFound
	}
	return model.Reconstruct(s), nil
}

// ListBySubject returns a page of the tenant's assessments, newest first.
func (r *AssessmentRepository) ListBySubject(_ context.Context, tenantID uuid.UUID, subjectRef string, limit, offset int) ([]*model.RiskAssessment, error) {
	r.mu.RLock()
	matches := make([]model.RiskAssessmentState, 0)
	for _, s := range r.byID {
		if s.TenantID == tenantID && (subjectRef == "" || s.SubjectRef == subjectRef) {
			matches = append(matches, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID.String() < matches[j].ID.String()
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	if offset >= len(matches) {
		return nil, nil
	}
	end := len(matches)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*model.RiskAssessment, 0, end-offset)
	for _, s := range matches[offset:end] {
		out = append(out, model.Reconstruct(s))
	}
	return out, nil
}

// Len returns the number of stored assessments.
func (r *AssessmentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
