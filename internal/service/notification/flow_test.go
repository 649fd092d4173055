package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/puzzle"
	"github.com/oshokin/alarm-clock/internal/repository/kv"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/trigger"
)

var errDenied = errors.New("playback denied")

// fakeTone records tone calls.
type fakeTone struct {
	started  []string
	stops    int
	startErr error
	mu       sync.Mutex
}

func (f *fakeTone) Start(_ context.Context, soundID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = append(f.started, soundID)

	return f.startErr
}

func (f *fakeTone) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++
}

func (f *fakeTone) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stops
}

// recorder collects published views.
type recorder struct {
	views []View
	mu    sync.Mutex
}

func (r *recorder) publish(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views = append(r.views, v)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.views)
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 10, 19, hour, minute, second, 0, time.Local)
}

type fixture struct {
	store      *alarms.Store
	controller *trigger.Controller
	tone       *fakeTone
	events     *recorder
	flow       *Flow
	manual     *clock.Manual
}

func newFixture(t *testing.T, start time.Time, opts ...Option) *fixture {
	t.Helper()

	backend, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)

	manual := clock.NewManual(start)
	store := alarms.New(backend, alarms.WithClock(manual))
	require.NoError(t, store.Load(context.Background()))

	controller := trigger.New(store)
	tone := &fakeTone{}
	events := &recorder{}

	opts = append([]Option{WithRand(puzzle.NewSeededRand(7)), WithPublisher(events.publish)}, opts...)

	return &fixture{
		store:      store,
		controller: controller,
		tone:       tone,
		events:     events,
		flow:       New(controller, tone, opts...),
		manual:     manual,
	}
}

func (f *fixture) add(t *testing.T, input alarms.NewAlarm) string {
	t.Helper()

	created, err := f.store.Add(context.Background(), input)
	require.NoError(t, err)

	return created.ID
}

func solve(t *testing.T, flow *Flow, total int) {
	t.Helper()

	for id := 1; id <= total; id++ {
		selection, err := flow.SelectDot(context.Background(), id)
		require.NoError(t, err)
		require.True(t, selection.Accepted)
		require.Equal(t, id == total, selection.Complete)
	}
}

// TestFlow_SolveThenSnoozeRetriggers walks an 08:00 alarm through a 47 second
// solve, a snooze and the retrigger five minutes later.
func TestFlow_SolveThenSnoozeRetriggers(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		fx := newFixture(t, at(8, 0, 0))
		id := fx.add(t, alarms.NewAlarm{Time: "08:00", DifficultyLevel: 10})

		active, ok := fx.flow.Tick(ctx, at(8, 0, 0))
		require.True(t, ok)
		require.Equal(t, id, active.ID)
		require.Equal(t, PhaseRinging, fx.flow.Phase())
		require.Equal(t, []string{""}, fx.tone.started)

		view, err := fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)
		require.Len(t, view.Dots, 10)
		require.Equal(t, PhaseSolving, fx.flow.Phase())

		time.Sleep(47*time.Second + 500*time.Millisecond)
		synctest.Wait()

		require.Equal(t, 47, fx.flow.View().Puzzle.ElapsedSeconds)
		require.Zero(t, fx.tone.stopCount(), "tone keeps playing while solving")

		solve(t, fx.flow, 10)

		resolved := fx.flow.View()
		require.Equal(t, PhaseResolved, resolved.Phase)
		require.Equal(t, "00:47", resolved.SolvedIn)
		require.Equal(t, 1, fx.tone.stopCount())

		// The timer is gone once solved.
		time.Sleep(5 * time.Second)
		synctest.Wait()
		require.Equal(t, "00:47", fx.flow.View().SolvedIn)

		fx.manual.Set(at(8, 0, 47))

		until, err := fx.flow.Snooze(ctx)
		require.NoError(t, err)
		require.Equal(t, at(8, 5, 47).UnixMilli(), until.UnixMilli())
		require.Equal(t, PhaseIdle, fx.flow.Phase())
		require.Nil(t, fx.controller.Active())

		_, ok = fx.flow.Tick(ctx, at(8, 0, 59))
		require.False(t, ok)

		_, ok = fx.flow.Tick(ctx, at(8, 5, 46))
		require.False(t, ok)

		active, ok = fx.flow.Tick(ctx, at(8, 5, 47))
		require.True(t, ok)
		require.Equal(t, id, active.ID)
		require.Equal(t, PhaseRinging, fx.flow.Phase())

		fx.flow.Close()
	})
}

// TestFlow_Dismiss stops the tone and keeps the alarm quiet for the minute.
func TestFlow_Dismiss(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		fx := newFixture(t, at(7, 0, 0))
		id := fx.add(t, alarms.NewAlarm{Time: "07:00", DifficultyLevel: 3, SoundType: "alarm1"})

		_, ok := fx.flow.Tick(ctx, at(7, 0, 0))
		require.True(t, ok)
		require.Equal(t, []string{"alarm1"}, fx.tone.started)

		_, err := fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)

		solve(t, fx.flow, 3)

		dismissed, err := fx.flow.Dismiss(ctx)
		require.NoError(t, err)
		require.Equal(t, id, dismissed.ID)
		require.Equal(t, PhaseIdle, fx.flow.Phase())
		require.True(t, fx.controller.DismissedThisMinute(id))

		_, ok = fx.flow.Tick(ctx, at(7, 0, 30))
		require.False(t, ok)

		_, ok = fx.store.SnoozedUntil(id)
		require.False(t, ok)
	})
}

// TestFlow_WrongPhase rejects operations that do not apply.
func TestFlow_WrongPhase(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		fx := newFixture(t, at(7, 0, 0))
		fx.add(t, alarms.NewAlarm{Time: "07:00", DifficultyLevel: 2})

		_, err := fx.flow.BeginPuzzle(ctx)
		require.ErrorIs(t, err, ErrInvalidPhase)

		_, err = fx.flow.Dismiss(ctx)
		require.ErrorIs(t, err, ErrInvalidPhase)

		_, ok := fx.flow.Tick(ctx, at(7, 0, 0))
		require.True(t, ok)

		_, err = fx.flow.SelectDot(ctx, 1)
		require.ErrorIs(t, err, ErrInvalidPhase)

		require.ErrorIs(t, fx.flow.CancelPuzzle(ctx), ErrInvalidPhase)
		require.ErrorIs(t, fx.flow.LeavePointer(), ErrInvalidPhase)

		_, err = fx.flow.Snooze(ctx)
		require.ErrorIs(t, err, ErrInvalidPhase)

		_, err = fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)

		_, err = fx.flow.BeginPuzzle(ctx)
		require.ErrorIs(t, err, ErrInvalidPhase)

		_, err = fx.flow.Dismiss(ctx)
		require.ErrorIs(t, err, ErrInvalidPhase)

		fx.flow.Close()
	})
}

// TestFlow_CancelReturnsToRinging keeps the tone and discards the timer.
func TestFlow_CancelReturnsToRinging(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		fx := newFixture(t, at(7, 0, 0))
		fx.add(t, alarms.NewAlarm{Time: "07:00", DifficultyLevel: 4})

		_, ok := fx.flow.Tick(ctx, at(7, 0, 0))
		require.True(t, ok)

		_, err := fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)

		time.Sleep(3*time.Second + 500*time.Millisecond)
		synctest.Wait()

		require.NoError(t, fx.flow.CancelPuzzle(ctx))

		view := fx.flow.View()
		require.Equal(t, PhaseRinging, view.Phase)
		require.Nil(t, view.Puzzle)
		require.Zero(t, fx.tone.stopCount())

		time.Sleep(10 * time.Second)
		synctest.Wait()

		restarted, err := fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)
		require.Zero(t, restarted.ElapsedSeconds)

		fx.flow.Close()
	})
}

// TestFlow_PlacementFailureStaysRinging surfaces the layout error distinctly.
func TestFlow_PlacementFailureStaysRinging(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newFixture(t, at(7, 0, 0), WithCanvas(60, 60))
	fx.add(t, alarms.NewAlarm{Time: "07:00", DifficultyLevel: 2})

	_, ok := fx.flow.Tick(ctx, at(7, 0, 0))
	require.True(t, ok)

	_, err := fx.flow.BeginPuzzle(ctx)
	require.ErrorIs(t, err, puzzle.ErrPlacementFailed)
	require.Equal(t, PhaseRinging, fx.flow.Phase())
	require.Nil(t, fx.flow.View().Puzzle)
}

// TestFlow_ToneFailureDoesNotBlock lets the user solve without sound.
func TestFlow_ToneFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		fx := newFixture(t, at(7, 0, 0))
		fx.tone.startErr = errDenied
		fx.add(t, alarms.NewAlarm{Time: "07:00", DifficultyLevel: 2})

		_, ok := fx.flow.Tick(ctx, at(7, 0, 0))
		require.True(t, ok)
		require.Equal(t, PhaseRinging, fx.flow.Phase())

		_, err := fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)

		solve(t, fx.flow, 2)

		_, err = fx.flow.Dismiss(ctx)
		require.NoError(t, err)
	})
}

// TestFlow_PointerAndOutOfOrder covers the preview line and ignored clicks.
func TestFlow_PointerAndOutOfOrder(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		fx := newFixture(t, at(7, 0, 0), WithDefaultDifficulty(3))
		fx.add(t, alarms.NewAlarm{Time: "07:00"})

		_, ok := fx.flow.Tick(ctx, at(7, 0, 0))
		require.True(t, ok)

		view, err := fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)
		require.Len(t, view.Dots, 3)

		shown, err := fx.flow.MovePointer(10, 10)
		require.NoError(t, err)
		require.False(t, shown, "no preview before the first dot")

		published := fx.events.count()

		selection, err := fx.flow.SelectDot(ctx, 3)
		require.NoError(t, err)
		require.False(t, selection.Accepted)
		require.Equal(t, published, fx.events.count(), "ignored clicks publish nothing")

		_, err = fx.flow.SelectDot(ctx, 1)
		require.NoError(t, err)

		shown, err = fx.flow.MovePointer(150, 150)
		require.NoError(t, err)
		require.True(t, shown)
		require.NotNil(t, fx.flow.View().Puzzle.Preview)

		require.NoError(t, fx.flow.LeavePointer())
		require.Nil(t, fx.flow.View().Puzzle.Preview)

		fx.flow.Close()
	})
}

// TestFlow_PublishesInMutationOrder publishes every view under the flow lock so
// a timer tick cannot overtake the resolved view.
func TestFlow_PublishesInMutationOrder(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()

		var (
			fx       *fixture
			phases   []Phase
			unlocked int
		)

		fx = newFixture(t, at(7, 0, 0), WithDefaultDifficulty(3), WithPublisher(func(v View) {
			if fx.flow.mu.TryLock() {
				unlocked++
				fx.flow.mu.Unlock()
			}

			phases = append(phases, v.Phase)
		}))
		fx.add(t, alarms.NewAlarm{Time: "07:00"})

		_, ok := fx.flow.Tick(ctx, at(7, 0, 0))
		require.True(t, ok)

		_, err := fx.flow.BeginPuzzle(ctx)
		require.NoError(t, err)

		time.Sleep(3*time.Second + 500*time.Millisecond)
		synctest.Wait()

		solve(t, fx.flow, 3)

		time.Sleep(3 * time.Second)
		synctest.Wait()

		require.Zero(t, unlocked, "views are published while the lock is held")
		require.NotEmpty(t, phases)
		require.Equal(t, PhaseResolved, phases[len(phases)-1])

		first := len(phases)
		for i, phase := range phases {
			if phase == PhaseResolved {
				first = i
				break
			}
		}

		for _, phase := range phases[first:] {
			require.Equal(t, PhaseResolved, phase)
		}

		fx.flow.Close()
	})
}
