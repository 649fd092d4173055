package server

import (
	"context"
	"fmt"
	"time"

	api "github.com/oshokin/alarm-clock/internal/api/http/alarm"
	"github.com/oshokin/alarm-clock/internal/audio"
	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/realtime"
	"github.com/oshokin/alarm-clock/internal/repository/kv"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/notification"
	"github.com/oshokin/alarm-clock/internal/service/trigger"
)

// service holds the wired components of one alarm clock process.
type service struct {
	// kv persists alarms and snoozes.
	kv kv.Store
	// store owns alarms and snooze records.
	store *alarms.Store
	// flow drives the active alarm.
	flow *notification.Flow
	// player is the alarm tone.
	player *audio.Player
	// previewer plays catalog sounds on request.
	previewer *audio.Previewer
	// events fans updates out to browsers.
	events *realtime.Broadcaster
	// api is the HTTP transport.
	api *api.Server
	// clock supplies tick times.
	clock clock.Clock
}

// newService opens storage and wires every component from settings.
func newService(ctx context.Context, settings *config.Config, clk clock.Clock) (*service, error) {
	store, err := kv.Open(ctx, settings.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	catalog := audio.DefaultCatalog(settings.Audio.SoundsDir)

	alarmStore := alarms.New(store,
		alarms.WithClock(clk),
		alarms.WithSoundCatalog(catalog),
		alarms.WithDefaultSnooze(settings.Snooze),
	)

	if err = alarmStore.Load(ctx); err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("load alarms: %w", err)
	}

	format := audio.Format{
		SampleRate: settings.Audio.SampleRate,
		Channels:   settings.Audio.Channels,
	}

	var output audio.Output = audio.NewSilent(format)
	if settings.Audio.Enabled {
		output = audio.NewOtoOutput(format)
	}

	s := &service{
		kv:        store,
		store:     alarmStore,
		player:    audio.NewPlayer(output, catalog),
		previewer: audio.NewPreviewer(output, catalog),
		events:    realtime.NewBroadcaster(),
		clock:     clk,
	}

	flowCtx := logger.WithName(ctx, "notification")

	s.flow = notification.New(trigger.New(alarmStore), s.player,
		notification.WithCanvas(settings.Canvas.Width, settings.Canvas.Height),
		notification.WithDefaultDifficulty(settings.DefaultDifficulty),
		notification.WithSnooze(settings.Snooze),
		notification.WithPublisher(func(view notification.View) {
			s.publish(flowCtx, realtime.EventNotification, view)
		}),
	)

	s.api = api.NewServer(api.Dependencies{
		Alarms:       alarmStore,
		Notification: s.flow,
		Sounds:       s.previewer,
		Clock:        clk,
		Events:       s.events,
		StaticDir:    settings.Audio.SoundsDir,
	})

	return s, nil
}

// runClock calls tick immediately and then once per interval until ctx is done.
func (s *service) runClock(ctx context.Context, interval time.Duration) {
	ctx = logger.WithName(ctx, "clock")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx, s.clock.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, s.clock.Now())
		}
	}
}

// tick publishes the clock reading and evaluates triggers at now.
func (s *service) tick(ctx context.Context, now time.Time) {
	s.publish(ctx, realtime.EventTick, clock.Read(now))

	if _, ok := s.flow.Tick(ctx, now); ok {
		// Trigger evaluation purges lapsed snoozes, which changes the list view.
		if err := s.api.PublishAlarms(); err != nil {
			logger.WarnKV(ctx, "Failed to publish alarms", "error", err)
		}
	}
}

func (s *service) publish(ctx context.Context, name string, payload any) {
	if err := s.events.Publish(name, payload); err != nil {
		logger.WarnKV(ctx, "Failed to publish event", "event", name, "error", err)
	}
}

// close stops sound and releases storage.
func (s *service) close(ctx context.Context) {
	s.flow.Close()
	s.previewer.Stop()

	if err := s.kv.Close(); err != nil {
		logger.ErrorKV(ctx, "Failed to close storage", "error", err)
	}
}
