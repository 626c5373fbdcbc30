package usecase

import (
	"context"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

// ClassifyPatient explains a caller-supplied probability for a record. No
// model is called and nothing is stored.
type ClassifyPatient struct {
	classifier *service.Classifier
}

// NewClassifyPatient creates a new ClassifyPatient use case.
func NewClassifyPatient(classifier *service.Classifier) *ClassifyPatient {
	return &ClassifyPatient{classifier: classifier}
}

// Execute runs the classifier.
func (uc *ClassifyPatient) Execute(_ context.Context, req dto.ClassifyPatientRequest) (dto.ClassificationResponse, error) {
	ve := &model.ValidationError{}

	record, err := req.Patient.ToModel()
	ve.Merge(err)
	if req.Probability == nil {
		ve.Add("probability", "is required")
	}
	classifier := uc.classifier
	if req.Policy != "" {
		p, err := valueobject.BannerPolicyFromString(req.Policy)
		if err != nil {
			ve.Add("banner_policy", "must be ternary or binary, got %q", req.Policy)
		} else {
			classifier = classifier.WithPolicy(p)
		}
	}
	if err := ve.OrNil(); err != nil {
		return dto.ClassificationResponse{}, err
	}

	explanation, err := classifier.Classify(record, *req.Probability)
	if err != nil {
		return dto.ClassificationResponse{}, err
	}

	return dto.ClassificationResponse{
		ExplanationResponse: dto.FromExplanation(explanation),
		Probability:         *req.Probability,
		RiskPercent:         dto.RiskPercent(*req.Probability),
	}, nil
}
