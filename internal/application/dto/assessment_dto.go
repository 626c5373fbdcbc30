package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
)

// PatientInput is the wire form of a patient record. Every field is a pointer
// so that a missing attribute can be told apart from a zero value.
type PatientInput struct {
	Age      *int     `json:"age" yaml:"age"`
	Sex      *int     `json:"sex" yaml:"sex"`
	CP       *int     `json:"cp" yaml:"cp"`
	Trestbps *int     `json:"trestbps" yaml:"trestbps"`
	Chol     *int     `json:"chol" yaml:"chol"`
	FBS      *int     `json:"fbs" yaml:"fbs"`
	RestECG  *int     `json:"restecg" yaml:"restecg"`
	Thalach  *int     `json:"thalach" yaml:"thalach"`
	Exang    *int     `json:"exang" yaml:"exang"`
	Oldpeak  *float64 `json:"oldpeak" yaml:"oldpeak"`
	Slope    *int     `json:"slope" yaml:"slope"`
	CA       *int     `json:"ca" yaml:"ca"`
	Thal     *int     `json:"thal" yaml:"thal"`
}

// ToModel checks presence of all 13 attributes and domain-validates the
// resulting record. Every problem is reported in one ValidationError.
func (p PatientInput) ToModel() (model.PatientRecord, error) {
	ve := &model.ValidationError{}
	var r model.PatientRecord

	ints := []struct {
		src   *int
		dst   *int
		field string
	}{
		{p.Age, &r.Age, model.FieldAge},
		{p.Sex, &r.Sex, model.FieldSex},
		{p.CP, &r.CP, model.FieldCP},
		{p.Trestbps, &r.Trestbps, model.FieldTrestbps},
		{p.Chol, &r.Chol, model.FieldChol},
		{p.FBS, &r.FBS, model.FieldFBS},
		{p.RestECG, &r.RestECG, model.FieldRestECG},
		{p.Thalach, &r.Thalach, model.FieldThalach},
		{p.Exang, &r.Exang, model.FieldExang},
		{p.Slope, &r.Slope, model.FieldSlope},
		{p.CA, &r.CA, model.FieldCA},
		{p.Thal, &r.Thal, model.FieldThal},
	}
	for _, f := range ints {
		if f.src == nil {
			ve.Add(f.field, "is required")
			continue
		}
		*f.dst = *f.src
	}
	if p.Oldpeak == nil {
		ve.Add(model.FieldOldpeak, "is required")
	} else {
		r.Oldpeak = *p.Oldpeak
	}

	if err := ve.OrNil(); err != nil {
		return model.PatientRecord{}, err
	}
	if err := r.Validate(); err != nil {
		return model.PatientRecord{}, err
	}
	return r, nil
}

// PatientInputFromModel converts a record into its wire form.
func PatientInputFromModel(r model.PatientRecord) PatientInput {
	return PatientInput{
		Age: &r.Age, Sex: &r.Sex, CP: &r.CP, Trestbps: &r.Trestbps, Chol: &r.Chol,
		FBS: &r.FBS, RestECG: &r.RestECG, Thalach: &r.Thalach, Exang: &r.Exang,
		Oldpeak: &r.Oldpeak, Slope: &r.Slope, CA: &r.CA, Thal: &r.Thal,
	}
}

// AssessPatientRequest is the input DTO for the AssessPatient use case.
type AssessPatientRequest struct {
	Patient    PatientInput `json:"patient"`
	SubjectRef string       `json:"subject_ref,omitempty"`
	Policy     string       `json:"banner_policy,omitempty"`
	TenantID   uuid.UUID    `json:"tenant_id"`
}

// ClassifyPatientRequest is the input DTO for the ClassifyPatient use case.
type ClassifyPatientRequest struct {
	Probability *float64     `json:"probability"`
	Patient     PatientInput `json:"patient"`
	Policy      string       `json:"banner_policy,omitempty"`
}

// GetAssessmentRequest is the input DTO for retrieving an assessment.
type GetAssessmentRequest struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
}

// ListAssessmentsRequest is the input DTO for listing assessments.
type ListAssessmentsRequest struct {
	SubjectRef string    `json:"subject_ref,omitempty"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
}

// ComputeFeaturesRequest is the input DTO for the ComputeFeatures use case.
type ComputeFeaturesRequest struct {
	Patient PatientInput `json:"patient"`
}

// FindingResponse is one explained attribute.
type FindingResponse struct {
	RuleID   string `json:"rule_id"`
	Polarity string `json:"polarity"`
	Message  string `json:"message"`
}

// ExplanationResponse is the classifier output.
type ExplanationResponse struct {
	Findings       []FindingResponse `json:"findings"`
	Policy         string            `json:"banner_policy"`
	BannerTier     string            `json:"banner_tier"`
	BannerMessage  string            `json:"banner_message"`
	SummaryTier    string            `json:"summary_tier"`
	SummaryMessage string            `json:"summary_message"`
	HighRiskCombo  bool              `json:"high_risk_combo"`
}

// ClassificationResponse is returned by ClassifyPatient.
type ClassificationResponse struct {
	ExplanationResponse
	RiskPercent string  `json:"risk_percent"`
	Probability float64 `json:"probability"`
}

// AssessmentResponse is the output DTO for a stored assessment.
type AssessmentResponse struct {
	CreatedAt   time.Time           `json:"created_at"`
	Patient     model.PatientRecord `json:"patient"`
	Explanation ExplanationResponse `json:"explanation"`
	SubjectRef  string              `json:"subject_ref,omitempty"`
	ModelName   string              `json:"model_name"`
	RiskPercent string              `json:"risk_percent"`
	Probability float64             `json:"probability"`
	ID          uuid.UUID           `json:"id"`
	TenantID    uuid.UUID           `json:"tenant_id"`
}

// ListAssessmentsResponse is the output DTO for ListAssessments.
type ListAssessmentsResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// FeaturesResponse exposes the normalized vector for a record.
type FeaturesResponse struct {
	FeatureSet string    `json:"feature_set"`
	Columns    []string  `json:"columns"`
	Values     []float64 `json:"values"`
}

// RiskPercent renders a probability as a percentage with one decimal place.
func RiskPercent(p float64) string {
	return decimal.NewFromFloat(p).Mul(decimal.NewFromInt(100)).StringFixed(1)
}

// FromExplanation maps a domain explanation to its DTO.
func FromExplanation(e model.Explanation) ExplanationResponse {
	findings := make([]FindingResponse, 0, len(e.Findings))
	for _, f := range e.Findings {
		findings = append(findings, FindingResponse{
			RuleID:   f.RuleID,
			Polarity: f.Polarity.String(),
			Message:  f.Message,
		})
	}
	return ExplanationResponse{
		Policy:         e.Policy.String(),
		BannerTier:     e.BannerTier.String(),
		BannerMessage:  e.BannerMessage,
		SummaryTier:    e.SummaryTier.String(),
		SummaryMessage: e.SummaryMessage,
		HighRiskCombo:  e.HighRiskCombo,
		Findings:       findings,
	}
}

// FromModel maps a domain model to the response DTO.
func FromModel(a *model.RiskAssessment) AssessmentResponse {
	return AssessmentResponse{
		ID:          a.ID(),
		TenantID:    a.TenantID(),
		SubjectRef:  a.SubjectRef(),
		Patient:     a.Record(),
		Probability: a.Probability(),
		RiskPercent: RiskPercent(a.Probability()),
		ModelName:   a.ModelName(),
		Explanation: FromExplanation(a.Explanation()),
		CreatedAt:   a.CreatedAt(),
	}
}
