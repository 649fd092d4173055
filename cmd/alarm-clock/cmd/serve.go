package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/server"
)

var (
	// dataPath overrides the configured storage path.
	dataPath string
	// silent disables the audio device.
	silent bool

	// serveCmd runs the clock loop and the HTTP server.
	serveCmd = &cobra.Command{
		Use:   "serve [listen-address]",
		Short: "Run the alarm clock server.",
		Long: `Starts the 1 Hz clock loop and the HTTP server that hosts the JSON API,
the event stream and the sound files.

Alarms and snoozes are persisted to the configured storage backend (file, sqlite
or redis) and restored on start. Listen address can be provided as argument to
override config (e.g., :9090, 0.0.0.0:8080).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signalContext()
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:     configPath,
				ConfigExplicit: cmd.Flags().Changed("config"),
				ListenAddress:  listenAddress,
				DataPath:       dataPath,
				Silent:         silent,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	serveCmd.Flags().StringVarP(&dataPath, "data", "d", "", "storage path, overrides the configured one")
	serveCmd.Flags().BoolVar(&silent, "silent", false, "ring without opening the audio device")

	rootCmd.AddCommand(serveCmd)
}
