package usecase

import (
	"context"
	"fmt"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/port"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListAssessments pages through stored assessments of a tenant, optionally
// narrowed to one subject reference.
type ListAssessments struct {
	repo port.AssessmentRepository
}

// NewListAssessments creates a new ListAssessments use case.
func NewListAssessments(repo port.AssessmentRepository) *ListAssessments {
	return &ListAssessments{repo: repo}
}

// Execute lists assessments, newest first.
func (uc *ListAssessments) Execute(ctx context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error) {
	if req.Offset < 0 {
		return dto.ListAssessmentsResponse{}, model.NewValidationError("offset", "must be >= 0, got %d", req.Offset)
	}
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	assessments, err := uc.repo.ListBySubject(ctx, req.TenantID, req.SubjectRef, limit, req.Offset)
	if err != nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("failed to list assessments: %w", err)
	}

	out := make([]dto.AssessmentResponse, 0, len(assessments))
	for _, a := range assessments {
		out = append(out, dto.FromModel(a))
	}
	return dto.ListAssessmentsResponse{Assessments: out, Limit: limit, Offset: req.Offset}, nil
}
