package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mehdighelich1379/Heart-Disease/pkg/auth"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "JWT helpers for local testing",
	}

	var (
		user, tenant, keyFile string
		roles                 []string
		ttl                   time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token accepted by cardiod",
		Long: `Issue signs a token with the shared secret (HS256) or an RSA private key
(RS256). The secret is read from --secret, CARDIO_JWT_SECRET or the config
file.

Example:
  cardioctl token issue --secret dev-secret --roles clinician`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := auth.JWTConfig{
				Secret:     opts.v.GetString("jwt.secret"),
				Issuer:     opts.v.GetString("jwt.issuer"),
				Expiration: ttl,
			}
			if keyFile != "" {
				pem, err := auth.LoadKeyFromFile(keyFile)
				if err != nil {
					return err
				}
				cfg.PrivateKeyPEM = pem
			}
			svc, err := auth.NewJWTService(cfg)
			if err != nil {
				return err
			}

			userID, err := parseOrNew(user)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}

			token, err := svc.GenerateToken(userID, tenantID, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	flags := issue.Flags()
	flags.String("secret", "", "HS256 shared secret")
	flags.String("issuer", "cardiod", "token issuer")
	flags.StringVar(&keyFile, "private-key", "", "RS256 private key PEM file")
	flags.StringVar(&user, "user", "", "user ID (random when empty)")
	flags.StringVar(&tenant, "tenant", "00000000-0000-0000-0000-000000000001", "tenant ID")
	flags.StringSliceVar(&roles, "roles", []string{auth.RoleClinician}, "roles claim")
	flags.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = opts.v.BindPFlag("jwt.secret", flags.Lookup("secret"))
	_ = opts.v.BindPFlag("jwt.issuer", flags.Lookup("issuer"))

	cmd.AddCommand(issue)
	return cmd
}

func parseOrNew(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(s)
}
