package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	// newAlarm collects the alarms add flags.
	newAlarm alarms.NewAlarm

	// alarmsCmd groups the alarm management commands.
	alarmsCmd = &cobra.Command{
		Use:   "alarms",
		Short: "Manage alarms on a running server.",
	}

	alarmsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List alarms sorted by time.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.ListAlarms(ctx, clientOptions(cmd))
		},
	}

	alarmsAddCmd = &cobra.Command{
		Use:   "add HH:MM",
		Short: "Add an enabled alarm.",
		Long: `Adds an enabled alarm at the given 24-hour time.

The puzzle difficulty is the number of dots to connect (1..16, default 8).
The sound is a catalog id such as alarm1; without one the default beep plays.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			input := newAlarm
			input.Time = args[0]

			return client.AddAlarm(ctx, clientOptions(cmd), input)
		},
	}

	alarmsRemoveCmd = &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.RemoveAlarm(ctx, clientOptions(cmd), args[0])
		},
	}

	alarmsToggleCmd = &cobra.Command{
		Use:   "toggle ID",
		Short: "Enable or disable an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.ToggleAlarm(ctx, clientOptions(cmd), args[0])
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	alarmsAddCmd.Flags().StringVarP(&newAlarm.Label, "label", "l", "", "alarm label")
	alarmsAddCmd.Flags().IntVarP(&newAlarm.DifficultyLevel, "difficulty", "n", 0, "number of puzzle dots")
	alarmsAddCmd.Flags().StringVar(&newAlarm.SoundType, "sound", "", "sound catalog id")

	alarmsCmd.AddCommand(alarmsListCmd, alarmsAddCmd, alarmsRemoveCmd, alarmsToggleCmd)
	rootCmd.AddCommand(alarmsCmd)
}
