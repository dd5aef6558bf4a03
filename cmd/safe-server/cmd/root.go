package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/study-safe-server/internal/config"
	"github.com/oshokin/study-safe-server/internal/service/server"
	"github.com/oshokin/study-safe-server/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the bridge server.
	rootCmd = &cobra.Command{
		Use:   "safe-server [listen-address]",
		Short: "Run the Study Safe bridge server.",
		Long: `Starts the bridge between the Study Safe sensor device and browser viewers.

The server ingests readings and alarms over HTTP, relays them to connected
viewers over a websocket channel, and queues mode-change commands for the
device to collect on its next poll.
Listen address can be provided as argument to override config (e.g., :3000, 0.0.0.0:8080).
Notifier credentials come from the settings file or SAFE_NOTIFIER_* environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the safe-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
