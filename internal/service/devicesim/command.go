package devicesim

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oshokin/study-safe-server/internal/config"
	"github.com/oshokin/study-safe-server/internal/logger"
)

// Options controls the safe-device-sim process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerURL provides an optional server base URL override.
	ServerURL string
	// ReportInterval is the pause between readings.
	ReportInterval time.Duration
	// PollInterval is the pause between command polls.
	PollInterval time.Duration
}

const (
	// DefaultReportInterval matches the firmware's reporting cadence.
	DefaultReportInterval = 2 * time.Second
	// DefaultPollInterval matches the firmware's polling cadence.
	DefaultPollInterval = 5 * time.Second

	// requestTimeout bounds each HTTP call to the bridge server.
	requestTimeout = 10 * time.Second
)

// Run starts the device simulator and blocks until the context is
// canceled. Failed calls are logged and retried on the next tick; the
// real device behaves the same way when the network blips.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "safe-device-sim")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if cfg.LogLevel != "" {
		if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
			logger.SetLevel(level)
		}
	}

	serverURL := cfg.ServerURL
	if opts.ServerURL != "" {
		serverURL = opts.ServerURL
	}

	serverURL = strings.TrimSuffix(serverURL, "/")

	reportInterval := opts.ReportInterval
	if reportInterval <= 0 {
		reportInterval = DefaultReportInterval
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	sim := newSimulator(serverURL, &http.Client{Timeout: requestTimeout}, time.Now().UnixNano())

	logger.InfoKV(ctx, "Device simulator started",
		"server_url", serverURL, "report_interval", reportInterval, "poll_interval", pollInterval)

	reportTicker := time.NewTicker(reportInterval)
	defer reportTicker.Stop()

	pollTicker := time.NewTicker(pollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-reportTicker.C:
			if err = sim.report(ctx); err != nil {
				logger.Warnf(ctx, "Report failed: %v", err)
			}
		case <-pollTicker.C:
			if err = sim.poll(ctx); err != nil {
				logger.Warnf(ctx, "Poll failed: %v", err)
			}
		case <-ctx.Done():
			logger.Info(ctx, "Device simulator stopped")

			return nil
		}
	}
}
