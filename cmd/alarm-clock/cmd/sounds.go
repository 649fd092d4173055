package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	// soundsCmd groups the sound catalog commands.
	soundsCmd = &cobra.Command{
		Use:   "sounds",
		Short: "Browse and preview alarm sounds.",
	}

	soundsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the sound catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.ListSounds(ctx, clientOptions(cmd))
		},
	}

	soundsPreviewCmd = &cobra.Command{
		Use:   "preview ID",
		Short: "Play a sound once on the server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.PreviewSound(ctx, clientOptions(cmd), args[0])
		},
	}

	soundsStopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the running preview.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.StopPreview(ctx, clientOptions(cmd))
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	soundsCmd.AddCommand(soundsListCmd, soundsPreviewCmd, soundsStopCmd)
	rootCmd.AddCommand(soundsCmd)
}
