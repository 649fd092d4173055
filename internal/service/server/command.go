package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Options controls the alarm-clock server process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ConfigExplicit is true when ConfigPath came from the command line; a
	// missing explicit file is an error instead of falling back to defaults.
	ConfigExplicit bool
	// ListenAddress overrides the configured HTTP listen address.
	ListenAddress string
	// DataPath overrides the configured storage path.
	DataPath string
	// Silent disables the audio device.
	Silent bool
}

const (
	// shutdownTimeout bounds graceful HTTP shutdown.
	shutdownTimeout = 5 * time.Second
	// readHeaderTimeout guards against slow clients.
	readHeaderTimeout = 5 * time.Second
)

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the clock loop and the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock-server")

	settings, err := config.LoadOrDefault(opts.ConfigPath, opts.ConfigExplicit)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	level, ok := logger.ParseLogLevel(settings.LogLevel)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level, using info", "log_level", settings.LogLevel)
	}

	logger.SetLevel(level)

	if opts.DataPath != "" {
		settings.Storage.Path = opts.DataPath
	}

	if opts.Silent {
		settings.Audio.Enabled = false
	}

	listenAddress, err := resolveListenAddress(settings.ListenAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	svc, err := newService(ctx, settings, clock.System{})
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	defer svc.close(ctx)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	// Request contexts derive from ctx, so open event streams end on shutdown.
	httpServer := &http.Server{
		Handler:           svc.api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	clockDone := make(chan struct{})

	go func() {
		defer close(clockDone)

		svc.runClock(ctx, settings.TickInterval)
	}()

	logger.InfoKV(ctx, "Alarm clock listening",
		"listen_address", listenAddress,
		"storage", settings.Storage.Backend,
		"audio", settings.Audio.Enabled)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	<-clockDone
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// resolveListenAddress picks the override when given, the configured address otherwise.
func resolveListenAddress(configAddr, override string) (string, error) {
	address := configAddr
	if override != "" {
		address = override
	}

	if address == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(address); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", address, err)
	}

	return address, nil
}
