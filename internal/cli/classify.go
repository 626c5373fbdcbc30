package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var (
		input       string
		probability float64
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Explain a record for a given probability",
		Long: `Classify runs the risk classifier on a patient record and a probability
you supply, without calling any model. It prints the banner, the summary and
one finding per attribute.

Example:
  cardioctl classify --input patient.json --probability 0.72
  cardioctl classify --input patient.yaml --probability 0.4 --policy binary -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("probability") {
				return errors.New("--probability is required")
			}
			asJSON, err := opts.jsonOutput()
			if err != nil {
				return err
			}
			patient, err := readPatient(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			uc := usecase.NewClassifyPatient(service.NewClassifier(valueobject.DefaultBannerPolicy))
			resp, err := uc.Execute(cmd.Context(), dto.ClassifyPatientRequest{
				Patient:     patient,
				Probability: &probability,
				Policy:      opts.policy(cmd),
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			renderExplanation(cmd.OutOrStdout(), resp.RiskPercent, resp.ExplanationResponse)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "patient record file (.json or .yaml, - for stdin)")
	cmd.Flags().Float64VarP(&probability, "probability", "p", 0, "probability of heart disease in [0, 1]")
	addPolicyFlag(cmd)
	return cmd
}

func addPolicyFlag(cmd *cobra.Command) {
	cmd.Flags().String("policy", valueobject.DefaultBannerPolicy.String(), "banner policy (ternary, binary)")
}

// policy resolves --policy, then CARDIO_POLICY and the config file.
func (o *rootOptions) policy(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("policy"); f != nil && f.Changed {
		return f.Value.String()
	}
	if p := o.v.GetString("policy"); p != "" {
		return p
	}
	return valueobject.DefaultBannerPolicy.String()
}
