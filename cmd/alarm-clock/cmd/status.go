package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/checker"
	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	// wait is how long status retries an unreachable server.
	wait time.Duration
	// pollInterval is the watch polling period.
	pollInterval time.Duration

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the server clock, alarms and notification phase.",
		Long: `Reads the clock, the alarm list and the notification phase from a running server.

With --wait the command keeps retrying until the server answers. When no server
answers, alarm-clock processes running on this machine are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			opts := clientOptions(cmd)
			opts.Wait = wait

			return client.Status(ctx, opts)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Log notification phase changes until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return checker.Run(ctx, &checker.Options{
				ConfigPath:     configPath,
				ConfigExplicit: cmd.Flags().Changed("config"),
				ServerAddress:  serverAddress,
				PollInterval:   pollInterval,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	statusCmd.Flags().DurationVarP(&wait, "wait", "w", 0, "keep retrying for this long")
	watchCmd.Flags().DurationVarP(&pollInterval, "interval", "i", checker.DefaultPollInterval, "polling interval")

	rootCmd.AddCommand(statusCmd, watchCmd)
}
