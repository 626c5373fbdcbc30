package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/pkg/auth"
)

var (
	writeRoles = []string{auth.RoleAdmin, auth.RoleClinician, auth.RoleService}
	readRoles  = []string{auth.RoleAdmin, auth.RoleClinician, auth.RoleAnalyst}
	toolRoles  = []string{auth.RoleAdmin, auth.RoleClinician, auth.RoleAnalyst, auth.RoleService}
)

// AssessmentHandler serves the assessment API over HTTP.
type AssessmentHandler struct {
	assessPatient   *usecase.AssessPatient
	classifyPatient *usecase.ClassifyPatient
	getAssessment   *usecase.GetAssessment
	listAssessments *usecase.ListAssessments
	computeFeatures *usecase.ComputeFeatures
	logger          *slog.Logger
	defaultTenant   uuid.UUID
}

// NewAssessmentHandler creates a new REST handler. defaultTenant scopes
// requests made without JWT claims, i.e. when auth is disabled.
func NewAssessmentHandler(
	assessPatient *usecase.AssessPatient,
	classifyPatient *usecase.ClassifyPatient,
	getAssessment *usecase.GetAssessment,
	listAssessments *usecase.ListAssessments,
	computeFeatures *usecase.ComputeFeatures,
	defaultTenant uuid.UUID,
	logger *slog.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		assessPatient:   assessPatient,
		classifyPatient: classifyPatient,
		getAssessment:   getAssessment,
		listAssessments: listAssessments,
		computeFeatures: computeFeatures,
		defaultTenant:   defaultTenant,
		logger:          logger,
	}
}

// RegisterRoutes registers the API routes on the provided ServeMux.
func (h *AssessmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/assessments", h.AssessPatient)
	mux.HandleFunc("GET /api/v1/assessments", h.ListAssessments)
	mux.HandleFunc("GET /api/v1/assessments/{id}", h.GetAssessment)
	mux.HandleFunc("POST /api/v1/classifications", h.ClassifyPatient)
	mux.HandleFunc("POST /api/v1/features", h.ComputeFeatures)
}

// AssessPatient scores, explains and stores a patient record.
func (h *AssessmentHandler) AssessPatient(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.authorize(w, r, writeRoles)
	if !ok {
		return
	}

	var req dto.AssessPatientRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.TenantID = tenantID

	resp, err := h.assessPatient.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/assessments/"+resp.ID.String())
	writeJSON(w, http.StatusCreated, resp)
}

// ClassifyPatient explains a record against a caller-supplied probability.
// Nothing is stored.
func (h *AssessmentHandler) ClassifyPatient(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, toolRoles); !ok {
		return
	}

	var req dto.ClassifyPatientRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.classifyPatient.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AssessmentHandler) ComputeFeatures(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, toolRoles); !ok {
		return
	}

	var req dto.ComputeFeaturesRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.computeFeatures.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAssessment returns one stored assessment of the caller's tenant.
func (h *AssessmentHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.authorize(w, r, readRoles)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, model.NewValidationError("id", "must be a UUID"))
		return
	}

	resp, err := h.getAssessment.Execute(r.Context(), dto.GetAssessmentRequest{
		TenantID:     tenantID,
		AssessmentID: id,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAssessments pages through the caller's assessments, newest first.
func (h *AssessmentHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.authorize(w, r, readRoles)
	if !ok {
		return
	}

	q := r.URL.Query()
	verr := &model.ValidationError{}
	limit := queryInt(q.Get("limit"), "limit", verr)
	offset := queryInt(q.Get("offset"), "offset", verr)
	if err := verr.OrNil(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.listAssessments.Execute(r.Context(), dto.ListAssessmentsRequest{
		TenantID:   tenantID,
		SubjectRef: q.Get("subject_ref"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// authorize resolves the tenant for the request and enforces roles when the
// request carries JWT claims. Without claims the default tenant applies.
func (h *AssessmentHandler) authorize(w http.ResponseWriter, r *http.Request, roles []string) (uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return h.defaultTenant, true
	}
	if !claims.HasAnyRole(roles...) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "insufficient role"})
		return uuid.Nil, false
	}
	if claims.TenantID == uuid.Nil {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "token has no tenant"})
		return uuid.Nil, false
	}
	return claims.TenantID, true
}

func queryInt(raw, field string, verr *model.ValidationError) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(field, "must be an integer, got %q", raw)
		return 0
	}
	return n
}
