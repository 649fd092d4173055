package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/notification"
)

// defaultRetryInterval is the delay between Status attempts while waiting.
const defaultRetryInterval = 1 * time.Second

// ErrServerUnavailable is returned when no server answered.
var ErrServerUnavailable = errors.New("alarm-clock server is not reachable")

// status is one successful server reading.
type status struct {
	reading      *clock.Reading
	notification *notification.View
	alarms       int
	enabled      int
}

// Status prints the server clock, the notification phase and alarm counts.
func Status(ctx context.Context, opts *Options) error {
	return runStatus(ctx, opts, ps.Processes)
}

//nolint:cyclop // Retry loop mirrors the push loop of the other commands.
func runStatus(ctx context.Context, opts *Options, list processLister) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "status")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	// attempt tries once to read the server state.
	attempt := func() (*status, error) {
		reading, err := s.client.Clock(ctx)
		if err != nil {
			return nil, err
		}

		view, err := s.client.Notification(ctx)
		if err != nil {
			return nil, err
		}

		alarms, err := s.client.ListAlarms(ctx)
		if err != nil {
			return nil, err
		}

		result := &status{
			reading:      reading,
			notification: view,
			alarms:       len(alarms),
		}

		for _, a := range alarms {
			if a.Enabled {
				result.enabled++
			}
		}

		return result, nil
	}

	result, err := attempt()
	if err == nil {
		return writeStatus(s.out, s.address, result)
	}

	if opts.Wait > 0 {
		logger.InfoKV(ctx, "Waiting for server", "server_address", s.address, "wait", opts.Wait.String())

		waitCtx, cancel := context.WithTimeout(ctx, opts.Wait)
		defer cancel()

		ticker := time.NewTicker(defaultRetryInterval)
		defer ticker.Stop()

	retry:
		for {
			select {
			case <-waitCtx.Done():
				break retry
			case <-ticker.C:
				result, err = attempt()
				if err == nil {
					return writeStatus(s.out, s.address, result)
				}

				logger.DebugKV(ctx, "Server not ready", "error", err)
			}
		}
	}

	logger.ErrorKV(ctx, "Status request failed", "server_address", s.address, "error", err)
	reportLocalServers(ctx, s.out, list)

	return fmt.Errorf("%s: %w", s.address, ErrServerUnavailable)
}

// reportLocalServers prints alarm-clock processes running on this machine.
func reportLocalServers(ctx context.Context, out io.Writer, list processLister) {
	pids, err := localServers(list)
	if err != nil {
		logger.WarnKV(ctx, "Failed to inspect local processes", "error", err)
		return
	}

	if len(pids) == 0 {
		_, _ = fmt.Fprintln(out, "No local alarm-clock process found; start one with `alarm-clock serve`")
		return
	}

	_, _ = fmt.Fprintf(out, "Local alarm-clock processes: %v (check the listen address)\n", pids)
}

// writeStatus renders one server reading.
func writeStatus(out io.Writer, address string, result *status) error {
	view := result.notification

	_, err := fmt.Fprintf(out,
		"Server:  %s\nClock:   %s, %s\nAlarms:  %d (%d enabled)\nPhase:   %s\n",
		address, result.reading.Time, result.reading.Date, result.alarms, result.enabled, view.Phase)
	if err != nil {
		return err
	}

	if view.Alarm == nil {
		return nil
	}

	_, err = fmt.Fprintf(out, "Active:  %s %s (%s)\n", view.Alarm.ID, view.DisplayTime, view.Alarm.Label)
	if err != nil {
		return err
	}

	if view.SolvedIn != "" {
		_, err = fmt.Fprintf(out, "Solved:  in %s\n", view.SolvedIn)
	}

	return err
}
