package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/ml"
)

// scoreResult is the JSON output of the score command.
type scoreResult struct {
	dto.ClassificationResponse
	ModelName string `json:"model_name"`
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a record with a model and explain the result",
		Long: `Score normalizes a patient record, asks a scoring model for the probability
of heart disease and explains the result. The default backend evaluates the
logistic manifest in configs/model.yaml locally; --backend http calls a model
server instead.

Example:
  cardioctl score --input patient.json
  cardioctl score --input patient.json --backend http --model-url http://localhost:8000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := opts.jsonOutput()
			if err != nil {
				return err
			}
			patient, err := readPatient(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			record, err := patient.ToModel()
			if err != nil {
				return err
			}

			loaded, err := ml.Load(ml.Options{
				Backend:      opts.v.GetString("model.backend"),
				URL:          opts.v.GetString("model.url"),
				ManifestPath: opts.v.GetString("model.manifest"),
				FeatureSet:   opts.v.GetString("model.feature_set"),
				Timeout:      opts.v.GetDuration("model.timeout"),
				InvertOutput: opts.v.GetBool("model.invert"),
			}, opts.logger)
			if err != nil {
				return fmt.Errorf("failed to load scoring model: %w", err)
			}
			assessor, err := service.NewAssessor(loaded.Normalizer, loaded.Model)
			if err != nil {
				return err
			}

			p, _, err := assessor.Score(cmd.Context(), record)
			if err != nil {
				return err
			}

			resp, err := usecase.NewClassifyPatient(service.NewClassifier(valueobject.DefaultBannerPolicy)).
				Execute(cmd.Context(), dto.ClassifyPatientRequest{
					Patient:     patient,
					Probability: &p,
					Policy:      opts.policy(cmd),
				})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), scoreResult{ClassificationResponse: resp, ModelName: assessor.ModelName()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model: %s\n", assessor.ModelName())
			renderExplanation(cmd.OutOrStdout(), resp.RiskPercent, resp.ExplanationResponse)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "patient record file (.json or .yaml, - for stdin)")
	flags.String("backend", ml.BackendLogistic, "model backend (logistic, http, stub)")
	flags.String("manifest", "configs/model.yaml", "logistic model manifest")
	flags.String("model-url", "http://localhost:8000", "model server base URL for --backend http")
	flags.String("feature-set", valueobject.FeatureSetRaw.String(), "feature set for the http and stub backends")
	flags.Duration("timeout", 5*time.Second, "model call timeout")
	flags.Bool("invert", false, "report 1-p for models whose positive class is healthy")
	addPolicyFlag(cmd)

	for key, flag := range map[string]string{
		"model.backend":     "backend",
		"model.manifest":    "manifest",
		"model.url":         "model-url",
		"model.feature_set": "feature-set",
		"model.timeout":     "timeout",
		"model.invert":      "invert",
	} {
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}
