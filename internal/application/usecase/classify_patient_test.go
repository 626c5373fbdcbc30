package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

func probability(p float64) *float64 { return &p }

func TestClassifyPatient_Execute(t *testing.T) {
	uc := usecase.NewClassifyPatient(service.NewClassifier(valueobject.BannerPolicyTernary))

	t.Run("explains a moderate probability", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ClassifyPatientRequest{
			Patient:     dto.PatientInputFromModel(model.SamplePatientRecord()),
			Probability: probability(0.7),
		})

		require.NoError(t, err)
		assert.Equal(t, "medium", resp.SummaryTier)
		assert.Equal(t, service.BannerMedium, resp.BannerMessage)
		assert.Equal(t, "70.0", resp.RiskPercent)
		assert.Len(t, resp.Findings, 5)
	})

	t.Run("policy override", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ClassifyPatientRequest{
			Patient:     dto.PatientInputFromModel(model.SamplePatientRecord()),
			Probability: probability(0.5),
			Policy:      "binary",
		})

		require.NoError(t, err)
		assert.Equal(t, "high", resp.BannerTier)
		assert.Equal(t, "low", resp.SummaryTier)
	})

	t.Run("missing probability and fields are reported together", func(t *testing.T) {
		in := dto.PatientInputFromModel(model.SamplePatientRecord())
		in.Age = nil

		_, err := uc.Execute(context.Background(), dto.ClassifyPatientRequest{Patient: in, Policy: "nope"})

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		fields := []string{}
		for _, v := range ve.Violations {
			fields = append(fields, v.Field)
		}
		assert.Equal(t, []string{"age", "probability", "banner_policy"}, fields)
	})

	t.Run("out of range probability", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.ClassifyPatientRequest{
			Patient:     dto.PatientInputFromModel(model.SamplePatientRecord()),
			Probability: probability(1.2),
		})
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}
