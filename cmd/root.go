package cmd

import (
	"context"
	"os"

	"github.com/atc0005/go-nagios"
	"github.com/spf13/cobra"

	"github.com/opsgrid/check-cm/internal/check"
	"github.com/opsgrid/check-cm/internal/cm"
	"github.com/opsgrid/check-cm/internal/config"
	"github.com/opsgrid/check-cm/internal/logging"
	"github.com/opsgrid/check-cm/internal/plugin"
)

// Version is set at build time via -ldflags "-X github.com/opsgrid/check-cm/cmd.Version=..."
var Version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "check-cm",
	Short: "Nagios plugin checking service state via a cluster-management API",
	Long: `check-cm queries the REST API of a cluster-management server and reports
the state of a service, or of one of its role instances, as a Nagios check.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var _ check.API = (*cm.Client)(nil)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.Flags().AddFlagSet(config.Flags())
	rootCmd.Flags().StringVar(&configFile, "config", "", "Config file (default: check-cm.yaml in . or /etc/check-cm)")
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), settings.Verbosity)

	client, err := cm.New(settings, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
	defer cancel()

	var result plugin.Result
	if settings.ListMode() {
		err := runList(ctx, client, settings, cmd.OutOrStdout())
		if err == nil {
			// Listings are operator tooling, not a check result, so the
			// exit code warns any scheduler that runs them by mistake.
			os.Exit(plugin.StatusUnknown.ExitCode())
		}
		result = check.ErrorResult(err, settings.Timeout)
	} else {
		result = check.Run(ctx, client, settings)
	}
	logger.Debug().Str("status", result.Status.String()).Msg("check complete")

	plug := nagios.NewPlugin()
	result.ApplyTo(plug)
	plug.ReturnCheckResults()
	return nil
}
