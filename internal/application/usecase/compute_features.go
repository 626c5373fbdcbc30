package usecase

import (
	"context"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
)

// ComputeFeatures exposes the feature vector the scoring model would receive.
type ComputeFeatures struct {
	normalizer *service.FeatureNormalizer
}

// NewComputeFeatures creates a new ComputeFeatures use case.
func NewComputeFeatures(normalizer *service.FeatureNormalizer) *ComputeFeatures {
	return &ComputeFeatures{normalizer: normalizer}
}

// Execute normalizes the record.
func (uc *ComputeFeatures) Execute(_ context.Context, req dto.ComputeFeaturesRequest) (dto.FeaturesResponse, error) {
	record, err := req.Patient.ToModel()
	if err != nil {
		return dto.FeaturesResponse{}, err
	}
	vector, err := uc.normalizer.Normalize(record)
	if err != nil {
		return dto.FeaturesResponse{}, err
	}
	return dto.FeaturesResponse{
		FeatureSet: uc.normalizer.FeatureSet().String(),
		Columns:    vector.Columns,
		Values:     vector.Values,
	}, nil
}
