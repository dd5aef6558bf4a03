package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/study-safe-server/internal/config"
	"github.com/oshokin/study-safe-server/internal/service/devicesim"
	"github.com/oshokin/study-safe-server/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// reportInterval between synthetic readings.
	reportInterval time.Duration
	// pollInterval between command polls.
	pollInterval time.Duration

	// rootCmd represents the base command for running the device simulator.
	rootCmd = &cobra.Command{
		Use:   "safe-device-sim [server-url]",
		Short: "Run a simulated Study Safe sensor device.",
		Long: `Starts a software stand-in for the Study Safe sensor device.

The simulator posts synthetic accelerometer readings, polls the bridge
server for pending commands, arms itself on startMonitoring and raises an
alarm when armed movement exceeds a threshold.
Server URL can be provided as argument to override config (e.g., http://127.0.0.1:3000).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server URL argument if provided, otherwise rely on config.
			var serverURL string
			if len(args) > 0 {
				serverURL = args[0]
			}

			options := &devicesim.Options{
				ConfigPath:     configPath,
				ServerURL:      serverURL,
				ReportInterval: reportInterval,
				PollInterval:   pollInterval,
			}

			return devicesim.Run(ctx, options)
		},
	}
)

// Execute runs the safe-device-sim CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		DurationVarP(&reportInterval, "report-interval", "r", devicesim.DefaultReportInterval, "pause between readings")
	rootCmd.Flags().
		DurationVarP(&pollInterval, "poll-interval", "p", devicesim.DefaultPollInterval, "pause between command polls")
}
