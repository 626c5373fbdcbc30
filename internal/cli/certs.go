package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mehdighelich1379/Heart-Disease/pkg/tlsutil"
)

func newCertsCmd(_ *rootOptions) *cobra.Command {
	var (
		hosts  []string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "TLS certificate helpers",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write a self-signed CA and server certificate for the gRPC listener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := tlsutil.GenerateSelfSignedCert(hosts, outDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "CA:          %s\n", files.CA)
			fmt.Fprintf(out, "certificate: %s\n", files.Server)
			fmt.Fprintf(out, "key:         %s\n", files.ServerKey)
			fmt.Fprintln(out, "Set TLS_CERT_FILE and TLS_KEY_FILE for cardiod; clients trust the CA.")
			return nil
		},
	}
	generate.Flags().StringSliceVar(&hosts, "hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs for the server certificate")
	generate.Flags().StringVar(&outDir, "out", "certs", "output directory")

	cmd.AddCommand(generate)
	return cmd
}
