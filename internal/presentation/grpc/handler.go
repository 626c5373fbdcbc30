package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/pkg/auth"
)

// requireRole checks the caller's roles. Calls without claims only reach the
// handler when authentication is disabled and are allowed through.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	if claims.HasAnyRole(roles...) {
		return nil
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

// Compile-time assertion that HeartRiskHandler implements HeartRiskServiceServer.
var _ HeartRiskServiceServer = (*HeartRiskHandler)(nil)

// HeartRiskHandler implements the gRPC HeartRiskServiceServer interface.
type HeartRiskHandler struct {
	UnimplementedHeartRiskServiceServer
	assessPatient   *usecase.AssessPatient
	classifyPatient *usecase.ClassifyPatient
	getAssessment   *usecase.GetAssessment
	logger          *slog.Logger
	defaultTenant   uuid.UUID
}

// NewHeartRiskHandler creates a new gRPC handler. defaultTenant applies to
// calls without JWT claims.
func NewHeartRiskHandler(
	assessPatient *usecase.AssessPatient,
	classifyPatient *usecase.ClassifyPatient,
	getAssessment *usecase.GetAssessment,
	defaultTenant uuid.UUID,
	logger *slog.Logger,
) *HeartRiskHandler {
	return &HeartRiskHandler{
		assessPatient:   assessPatient,
		classifyPatient: classifyPatient,
		getAssessment:   getAssessment,
		defaultTenant:   defaultTenant,
		logger:          logger,
	}
}

// Proto-aligned request/response message types.

// FindingMsg represents the proto Finding message.
type FindingMsg struct {
	RuleID   string `json:"rule_id"`
	Polarity string `json:"polarity"`
	Message  string `json:"message"`
}

// ExplanationMsg represents the proto Explanation message.
type ExplanationMsg struct {
	Findings       []FindingMsg `json:"findings"`
	BannerPolicy   string       `json:"banner_policy"`
	BannerTier     string       `json:"banner_tier"`
	BannerMessage  string       `json:"banner_message"`
	SummaryTier    string       `json:"summary_tier"`
	SummaryMessage string       `json:"summary_message"`
	HighRiskCombo  bool         `json:"high_risk_combo"`
}

// AssessmentMsg represents the proto Assessment message.
type AssessmentMsg struct {
	Explanation *ExplanationMsg  `json:"explanation"`
	Patient     dto.PatientInput `json:"patient"`
	ID          string           `json:"id"`
	TenantID    string           `json:"tenant_id"`
	SubjectRef  string           `json:"subject_ref,omitempty"`
	ModelName   string           `json:"model_name"`
	RiskPercent string           `json:"risk_percent"`
	CreatedAt   string           `json:"created_at"`
	Probability float64          `json:"probability"`
}

// AssessPatientRequest represents the proto AssessPatientRequest message.
type AssessPatientRequest struct {
	Patient      dto.PatientInput `json:"patient"`
	SubjectRef   string           `json:"subject_ref"`
	BannerPolicy string           `json:"banner_policy"`
}

// AssessPatientResponse represents the proto AssessPatientResponse message.
type AssessPatientResponse struct {
	Assessment *AssessmentMsg `json:"assessment"`
}

// ClassifyPatientRequest represents the proto ClassifyPatientRequest message.
type ClassifyPatientRequest struct {
	Probability  *float64         `json:"probability"`
	Patient      dto.PatientInput `json:"patient"`
	BannerPolicy string           `json:"banner_policy"`
}

// ClassifyPatientResponse represents the proto ClassifyPatientResponse message.
type ClassifyPatientResponse struct {
	Explanation *ExplanationMsg `json:"explanation"`
	RiskPercent string          `json:"risk_percent"`
	Probability float64         `json:"probability"`
}

// GetAssessmentRequest represents the proto GetAssessmentRequest message.
type GetAssessmentRequest struct {
	ID string `json:"id"`
}

// GetAssessmentResponse represents the proto GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *AssessmentMsg `json:"assessment"`
}

// AssessPatient handles a scoring request and stores the result.
func (h *HeartRiskHandler) AssessPatient(ctx context.Context, req *AssessPatientRequest) (*AssessPatientResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleClinician, auth.RoleService); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := h.tenantID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.assessPatient.Execute(ctx, dto.AssessPatientRequest{
		TenantID:   tenantID,
		SubjectRef: req.SubjectRef,
		Policy:     req.BannerPolicy,
		Patient:    req.Patient,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "assess patient", err)
	}

	h.logger.InfoContext(ctx, "patient assessed",
		slog.String("assessment_id", result.ID.String()),
		slog.String("summary_tier", result.Explanation.SummaryTier),
	)

	return &AssessPatientResponse{Assessment: toAssessmentMsg(result)}, nil
}

// ClassifyPatient explains a record for a caller-supplied probability.
func (h *HeartRiskHandler) ClassifyPatient(ctx context.Context, req *ClassifyPatientRequest) (*ClassifyPatientResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleClinician, auth.RoleAnalyst, auth.RoleService); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.classifyPatient.Execute(ctx, dto.ClassifyPatientRequest{
		Probability: req.Probability,
		Patient:     req.Patient,
		Policy:      req.BannerPolicy,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "classify patient", err)
	}

	return &ClassifyPatientResponse{
		Explanation: toExplanationMsg(result.ExplanationResponse),
		RiskPercent: result.RiskPercent,
		Probability: result.Probability,
	}, nil
}

// GetAssessment handles a get assessment request.
func (h *HeartRiskHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleClinician, auth.RoleAnalyst); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := h.tenantID(ctx)
	if err != nil {
		return nil, err
	}

	assessmentID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getAssessment.Execute(ctx, dto.GetAssessmentRequest{
		TenantID:     tenantID,
		AssessmentID: assessmentID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "get assessment", err)
	}

	return &GetAssessmentResponse{Assessment: toAssessmentMsg(result)}, nil
}

func (h *HeartRiskHandler) tenantID(ctx context.Context) (uuid.UUID, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return h.defaultTenant, nil
	}
	if claims.TenantID == uuid.Nil {
		return uuid.Nil, status.Error(codes.PermissionDenied, "token has no tenant")
	}
	return claims.TenantID, nil
}

// toStatus maps domain errors to gRPC status codes.
func (h *HeartRiskHandler) toStatus(ctx context.Context, op string, err error) error {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, model.ErrAssessmentNotFound):
		return status.Error(codes.NotFound, "assessment not found")
	case errors.Is(err, model.ErrFeatureOrderMismatch):
		h.logger.ErrorContext(ctx, "failed to "+op, slog.String("error", err.Error()))
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, model.ErrScoringUnavailable):
		h.logger.WarnContext(ctx, "failed to "+op, slog.String("error", err.Error()))
		return status.Error(codes.Unavailable, "scoring model unavailable")
	default:
		h.logger.ErrorContext(ctx, "failed to "+op, slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}

func toExplanationMsg(e dto.ExplanationResponse) *ExplanationMsg {
	findings := make([]FindingMsg, 0, len(e.Findings))
	for _, f := range e.Findings {
		findings = append(findings, FindingMsg{RuleID: f.RuleID, Polarity: f.Polarity, Message: f.Message})
	}
	return &ExplanationMsg{
		Findings:       findings,
		BannerPolicy:   e.Policy,
		BannerTier:     e.BannerTier,
		BannerMessage:  e.BannerMessage,
		SummaryTier:    e.SummaryTier,
		SummaryMessage: e.SummaryMessage,
		HighRiskCombo:  e.HighRiskCombo,
	}
}

func toAssessmentMsg(a dto.AssessmentResponse) *AssessmentMsg {
	return &AssessmentMsg{
		Explanation: toExplanationMsg(a.Explanation),
		Patient:     dto.PatientInputFromModel(a.Patient),
		ID:          a.ID.String(),
		TenantID:    a.TenantID.String(),
		SubjectRef:  a.SubjectRef,
		ModelName:   a.ModelName,
		RiskPercent: a.RiskPercent,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339Nano),
		Probability: a.Probability,
	}
}
