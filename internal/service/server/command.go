package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/oshokin/study-safe-server/internal/api"
	"github.com/oshokin/study-safe-server/internal/broadcast"
	"github.com/oshokin/study-safe-server/internal/config"
	"github.com/oshokin/study-safe-server/internal/logger"
	"github.com/oshokin/study-safe-server/internal/notifier"
)

// Options controls the safe-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override.
	ListenAddress string
}

const (
	// readHeaderTimeout bounds header parsing on device connections.
	readHeaderTimeout = 10 * time.Second
	// shutdownTimeout bounds the graceful drain of in-flight requests.
	shutdownTimeout = 10 * time.Second
)

// Run starts the bridge server and blocks until the context is canceled
// or the server stops. Configuration is loaded first; the listen address
// may be overridden from the command line.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "safe-server")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if cfg.LogLevel != "" {
		if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
			logger.SetLevel(level)
		} else {
			logger.Warnf(ctx, "Unknown log level %q, keeping %s", cfg.LogLevel, logger.Level())
		}
	}

	listenAddress := cfg.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	// Assemble the state machine and its collaborators.
	hub := broadcast.NewHub()
	svc := newService(hub, notifier.FromConfig(ctx, cfg.Notifier))

	// The hub outlives the listener slightly: it stops after the HTTP
	// server has drained, so in-flight broadcasts still have a consumer.
	hubCtx, stopHub := context.WithCancel(context.WithoutCancel(ctx))
	defer stopHub()

	go hub.Run(hubCtx)

	// Request contexts must survive the shutdown signal so in-flight
	// handlers can finish during the graceful drain.
	baseCtx := context.WithoutCancel(ctx)

	//nolint:exhaustruct // Remaining server settings keep their defaults.
	srv := &http.Server{
		Addr:              listenAddress,
		Handler:           api.NewRouter(svc, hub, svc),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	logger.InfoKV(ctx, "Bridge server listening",
		"listen_address", listenAddress, "mode", svc.Mode(ctx))

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(baseCtx, shutdownTimeout)
		defer cancel()

		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Errorf(ctx, "Failed to shut down cleanly: %v", shutdownErr)
		}

		stopHub()
		close(done)
	}()

	if err = srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}
