package client

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	api "github.com/oshokin/alarm-clock/internal/api/http/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
)

// ListAlarms prints every alarm sorted by time.
func ListAlarms(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarms-list")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	list, err := s.client.ListAlarms(ctx)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		_, err = fmt.Fprintln(s.out, "No alarms set")
		return err
	}

	return writeAlarms(s.out, list...)
}

// AddAlarm creates an alarm and prints it.
func AddAlarm(ctx context.Context, opts *Options, input alarms.NewAlarm) error {
	ctx = logger.WithName(ctx, "alarms-add")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	created, err := s.client.AddAlarm(ctx, input)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alarm added", "id", created.ID, "time", created.Time)

	return writeAlarms(s.out, *created)
}

// RemoveAlarm deletes an alarm by id.
func RemoveAlarm(ctx context.Context, opts *Options, id string) error {
	ctx = logger.WithName(ctx, "alarms-remove")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	if err = s.client.RemoveAlarm(ctx, id); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alarm removed", "id", id)

	return nil
}

// ToggleAlarm flips an alarm between enabled and disabled.
func ToggleAlarm(ctx context.Context, opts *Options, id string) error {
	ctx = logger.WithName(ctx, "alarms-toggle")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	toggled, err := s.client.ToggleAlarm(ctx, id)
	if err != nil {
		return err
	}

	if toggled == nil {
		logger.WarnKV(ctx, "No alarm with this id", "id", id)
		return nil
	}

	return writeAlarms(s.out, *toggled)
}

// writeAlarms renders alarms as an aligned table.
func writeAlarms(out io.Writer, list ...api.AlarmView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ID\tTIME\tSTATE\tLABEL\tDOTS\tSOUND\tSNOOZED UNTIL")

	for _, a := range list {
		state := "off"
		if a.Enabled {
			state = "on"
		}

		sound := a.SoundType
		if sound == "" {
			sound = "beep"
		}

		snoozed := "-"
		if a.SnoozedUntil != nil {
			snoozed = a.SnoozedUntil.Local().Format(time.TimeOnly)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			a.ID, a.DisplayTime, state, a.Label, a.Difficulty(), sound, snoozed)
	}

	return w.Flush()
}
