package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/notification"
)

// Options controls the watch polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ConfigExplicit is true when ConfigPath came from the command line.
	ConfigExplicit bool
	// ServerAddress provides an optional server address override.
	ServerAddress string
	// PollInterval defines the interval between notification checks.
	PollInterval time.Duration
}

// DefaultPollInterval defines the polling interval for notification checks.
const DefaultPollInterval = 1 * time.Second

// Run polls the notification flow and logs phase changes until ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-watch")

	settings, err := config.LoadOrDefault(opts.ConfigPath, opts.ConfigExplicit)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	// Determine server address: command line argument overrides config.
	serverAddress := client.DialAddress(settings.ListenAddress)
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	clientOpts := []common.Option{common.WithCallTimeout(settings.Timeout)}

	if actor, err := common.DetectActor(); err == nil {
		clientOpts = append(clientOpts, common.WithActor(actor))
	}

	api, err := common.New(serverAddress, clientOpts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	logger.InfoKV(ctx, "Watching notifications", "server_address", serverAddress, "interval", pollInterval.String())

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var previous *notification.View

	for {
		current, err := api.Notification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "Context canceled, exiting")
				return nil
			}

			logger.ErrorKV(ctx, "Check notification failed", "error", err)
		} else {
			report(ctx, previous, current)
			previous = current
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
		}
	}
}

// report logs the transition from previous to current, if any.
func report(ctx context.Context, previous, current *notification.View) {
	message, ok := describe(previous, current)
	if !ok {
		return
	}

	kvs := []any{"phase", current.Phase}
	if current.Alarm != nil {
		kvs = append(kvs, "alarm_id", current.Alarm.ID, "time", current.DisplayTime)

		if current.Alarm.Label != "" {
			kvs = append(kvs, "label", current.Alarm.Label)
		}
	}

	if current.SolvedIn != "" {
		kvs = append(kvs, "solved_in", current.SolvedIn)
	}

	logger.InfoKV(ctx, message, kvs...)
}

// describe names the change between two snapshots. The first snapshot is
// always reported; later ones only when the phase or the alarm changed.
func describe(previous, current *notification.View) (string, bool) {
	if previous != nil && previous.Phase == current.Phase && sameAlarm(previous, current) {
		return "", false
	}

	switch current.Phase {
	case notification.PhaseRinging:
		return "Alarm ringing", true
	case notification.PhaseSolving:
		return "Puzzle started", true
	case notification.PhaseResolved:
		return "Puzzle solved", true
	default:
		if previous == nil {
			return "No alarm active", true
		}

		return "Alarm cleared", true
	}
}

// sameAlarm reports whether both snapshots refer to the same active alarm.
func sameAlarm(a, b *notification.View) bool {
	if a.Alarm == nil || b.Alarm == nil {
		return a.Alarm == nil && b.Alarm == nil
	}

	return a.Alarm.ID == b.Alarm.ID
}
