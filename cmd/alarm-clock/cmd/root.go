package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the server address derived from config.
	serverAddress string

	// rootCmd represents the base command.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Puzzle alarm clock served to the browser.",
		Long: `A browser-based alarm clock that makes you solve a connect-the-dots puzzle
before an alarm can be dismissed or snoozed.

Run "alarm-clock serve" to start the clock loop and the web server, then manage
alarms from the browser or with the alarms, sounds, status and watch commands.
Settings are read from a YAML file; defaults apply when the file does not exist.`,
		SilenceUsage: true,
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// clientOptions builds the options shared by the client commands.
func clientOptions(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:     configPath,
		ConfigExplicit: cmd.Flags().Changed("config"),
		ServerAddress:  serverAddress,
		Out:            cmd.OutOrStdout(),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup persistent flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "server address, overrides the configured listen address")
}
