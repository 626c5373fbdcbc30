package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

func newFeaturesCmd(opts *rootOptions) *cobra.Command {
	var (
		input      string
		featureSet string
	)

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print the feature vector a model would receive",
		Long: `Features validates a patient record and prints the ordered columns and
values of the raw or engineered feature set. No scaler is applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := opts.jsonOutput()
			if err != nil {
				return err
			}
			set, err := valueobject.FeatureSetFromString(featureSet)
			if err != nil {
				return err
			}
			normalizer, err := service.NewFeatureNormalizer(set, nil)
			if err != nil {
				return err
			}
			patient, err := readPatient(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			resp, err := usecase.NewComputeFeatures(normalizer).Execute(cmd.Context(), dto.ComputeFeaturesRequest{Patient: patient})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tCOLUMN\tVALUE")
			for i, col := range resp.Columns {
				fmt.Fprintf(tw, "%d\t%s\t%g\n", i, col, resp.Values[i])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "patient record file (.json or .yaml, - for stdin)")
	cmd.Flags().StringVar(&featureSet, "feature-set", valueobject.FeatureSetRaw.String(), "feature set (raw, engineered)")
	return cmd
}
