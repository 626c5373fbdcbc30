// Package cli implements cardioctl, the operator tool for the heart risk
// service.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mehdighelich1379/Heart-Disease/pkg/observability"
)

const envPrefix = "CARDIO"

// rootOptions is shared by every subcommand.
type rootOptions struct {
	v       *viper.Viper
	logger  *slog.Logger
	cfgFile string
	version string
	verbose bool
}

// NewRootCmd builds the cardioctl command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{v: viper.New(), version: version}

	rootCmd := &cobra.Command{
		Use:   "cardioctl",
		Short: "cardioctl - heart disease risk tooling",
		Long: `cardioctl classifies patient records, scores them with a local model,
shows the feature vector a model receives and tails high-risk events.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (CARDIO_*)
  3. Config file (~/.cardioctl/config.yaml)
  4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.cardioctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format (text, json)")
	_ = opts.v.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newScoreCmd(opts),
		newFeaturesCmd(opts),
		newEventsCmd(opts),
		newConfigCmd(opts),
		newCertsCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(opts),
	)
	return rootCmd
}

// Execute runs cardioctl with os.Args.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	o.logger = observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})

	o.v.SetEnvPrefix(envPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	o.v.AutomaticEnv()

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		o.v.AddConfigPath(filepath.Join(home, ".cardioctl"))
		o.v.SetConfigType("yaml")
		o.v.SetConfigName("config")
	}

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	o.logger.Debug("using config file", "path", o.v.ConfigFileUsed())
	return nil
}

func (o *rootOptions) jsonOutput() (bool, error) {
	switch format := o.v.GetString("output"); format {
	case "text", "":
		return false, nil
	case "json":
		return true, nil
	default:
		return false, fmt.Errorf("unknown output format %q, want text or json", format)
	}
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cardioctl %s\n", opts.version)
		},
	}
}
