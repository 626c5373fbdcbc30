package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/messaging"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/persistence/memory"
	"github.com/mehdighelich1379/Heart-Disease/internal/presentation/rest"
	"github.com/mehdighelich1379/Heart-Disease/pkg/auth"
	"github.com/mehdighelich1379/Heart-Disease/pkg/observability"
	"github.com/mehdighelich1379/Heart-Disease/pkg/testutil"
)

type fakeModel struct {
	err         error
	columns     []string
	probability float64
}

func (m *fakeModel) Name() string             { return "fake" }
func (m *fakeModel) FeatureColumns() []string { return m.columns }

func (m *fakeModel) Predict(_ context.Context, _ model.FeatureVector) (float64, error) {
	return m.probability, m.err
}

type fixture struct {
	handler http.Handler
	repo    *memory.AssessmentRepository
	model   *fakeModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := observability.DiscardLogger()

	normalizer, err := service.NewFeatureNormalizer(valueobject.FeatureSetRaw, nil)
	require.NoError(t, err)
	m := &fakeModel{columns: service.RawColumns(), probability: 0.2}
	assessor, err := service.NewAssessor(normalizer, m)
	require.NoError(t, err)
	classifier := service.NewClassifier(valueobject.DefaultBannerPolicy)
	repo := memory.NewAssessmentRepository()

	h := rest.NewAssessmentHandler(
		usecase.NewAssessPatient(repo, messaging.NewLogPublisher(logger), assessor, classifier, nil),
		usecase.NewClassifyPatient(classifier),
		usecase.NewGetAssessment(repo),
		usecase.NewListAssessments(repo),
		usecase.NewComputeFeatures(normalizer),
		testutil.TestTenantID,
		logger,
	)

	return &fixture{
		handler: rest.NewRouter(rest.RouterConfig{
			Assessments: h,
			Health:      rest.NewHealthHandler("cardiod", logger),
			Logger:      logger,
		}),
		repo:  repo,
		model: m,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return f.doAs(t, context.Background(), method, path, body)
}

func (f *fixture) doAs(t *testing.T, ctx context.Context, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequestWithContext(ctx, method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func samplePatient() dto.PatientInput {
	return dto.PatientInputFromModel(model.SamplePatientRecord())
}

func TestAssessPatient_CreatesAndReadsBack(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/assessments", dto.AssessPatientRequest{
		Patient:    samplePatient(),
		SubjectRef: "mrn-42",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[dto.AssessmentResponse](t, rec)
	assert.Equal(t, testutil.TestTenantID, created.TenantID)
	assert.Equal(t, "fake", created.ModelName)
	assert.Equal(t, "20.0", created.RiskPercent)
	assert.Equal(t, "low", created.Explanation.SummaryTier)
	assert.Equal(t, "/api/v1/assessments/"+created.ID.String(), rec.Header().Get("Location"))

	rec = f.do(t, http.MethodGet, "/api/v1/assessments/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[dto.AssessmentResponse](t, rec)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Explanation, fetched.Explanation)

	rec = f.do(t, http.MethodGet, "/api/v1/assessments?subject_ref=mrn-42&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.ListAssessmentsResponse](t, rec)
	require.Len(t, list.Assessments, 1)
	assert.Equal(t, 5, list.Limit)
}

func TestAssessPatient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *fixture)
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing fields",
			body:       `{"patient":{"age":63}}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_failed",
		},
		{
			name:       "malformed json",
			body:       `{"patient":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_failed",
		},
		{
			name:       "unknown field",
			body:       `{"patient":{},"colour":"red"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_failed",
		},
		{
			name:       "model down",
			setup:      func(f *fixture) { f.model.err = errors.New("connection refused") },
			body:       dto.AssessPatientRequest{Patient: samplePatient()},
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "scoring_unavailable",
		},
		{
			name: "model column drift",
			setup: func(f *fixture) {
				cols := service.RawColumns()
				cols[0], cols[1] = cols[1], cols[0]
				f.model.columns = cols
			},
			body:       dto.AssessPatientRequest{Patient: samplePatient()},
			wantStatus: http.StatusInternalServerError,
			wantError:  "feature_order_mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			rec := f.do(t, http.MethodPost, "/api/v1/assessments", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantError, decode[rest.ErrorResponse](t, rec).Error)
			assert.Zero(t, f.repo.Len(), "failed requests must not store anything")
		})
	}
}

func TestAssessPatient_ValidationDetails(t *testing.T) {
	f := newFixture(t)
	p := samplePatient()
	sex := 2
	p.Sex = &sex

	rec := f.do(t, http.MethodPost, "/api/v1/assessments", dto.AssessPatientRequest{Patient: p})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[rest.ErrorResponse](t, rec)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "sex", resp.Details[0].Field)
	assert.Equal(t, "must be in [0, 1], got 2", resp.Details[0].Message)
}

func TestClassifyPatient(t *testing.T) {
	f := newFixture(t)
	p := 0.86

	rec := f.do(t, http.MethodPost, "/api/v1/classifications", dto.ClassifyPatientRequest{
		Patient:     samplePatient(),
		Probability: &p,
		Policy:      "binary",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[dto.ClassificationResponse](t, rec)
	assert.Equal(t, "high", resp.SummaryTier)
	assert.Equal(t, "binary", resp.Policy)
	assert.Equal(t, "86.0", resp.RiskPercent)
	assert.Zero(t, f.repo.Len())
}

func TestComputeFeatures(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/features", dto.ComputeFeaturesRequest{Patient: samplePatient()})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.FeaturesResponse](t, rec)
	assert.Equal(t, "raw", resp.FeatureSet)
	assert.Equal(t, service.RawColumns(), resp.Columns)
	assert.Len(t, resp.Values, len(resp.Columns))
}

func TestGetAssessment_Errors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/assessments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/assessments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[rest.ErrorResponse](t, rec).Error)
}

func TestListAssessments_BadQuery(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/assessments?limit=ten&offset=-1", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[rest.ErrorResponse](t, rec)
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "limit", resp.Details[0].Field)
}

func TestClaims_TenantAndRoles(t *testing.T) {
	f := newFixture(t)

	clinician := auth.ContextWithClaims(context.Background(), &auth.Claims{
		TenantID: testutil.OtherTenant,
		Roles:    []string{auth.RoleClinician},
	})
	rec := f.doAs(t, clinician, http.MethodPost, "/api/v1/assessments", dto.AssessPatientRequest{Patient: samplePatient()})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[dto.AssessmentResponse](t, rec)
	assert.Equal(t, testutil.OtherTenant, created.TenantID)

	// Other tenants cannot see it.
	rec = f.do(t, http.MethodGet, "/api/v1/assessments/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	analyst := auth.ContextWithClaims(context.Background(), &auth.Claims{
		TenantID: testutil.OtherTenant,
		Roles:    []string{auth.RoleAnalyst},
	})
	rec = f.doAs(t, analyst, http.MethodPost, "/api/v1/assessments", dto.AssessPatientRequest{Patient: samplePatient()})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.doAs(t, analyst, http.MethodGet, "/api/v1/assessments/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
