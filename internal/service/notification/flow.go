package notification

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/puzzle"
)

// Phase is the stage of the notification flow.
type Phase string

const (
	// PhaseIdle means no alarm is active.
	PhaseIdle Phase = "idle"
	// PhaseRinging means the tone plays and the puzzle can be started.
	PhaseRinging Phase = "ringing"
	// PhaseSolving means a puzzle is in progress; the tone keeps playing.
	PhaseSolving Phase = "solving"
	// PhaseResolved means the puzzle was solved; dismiss or snooze is allowed.
	PhaseResolved Phase = "resolved"
)

// DefaultSnooze is the snooze length used by Snooze.
const DefaultSnooze = 5 * time.Minute

// ErrInvalidPhase is returned when an operation does not apply to the current phase.
var ErrInvalidPhase = errors.New("operation is not allowed in the current phase")

// TonePlayer is the alarm sound capability. Stop must be safe to call repeatedly.
type TonePlayer interface {
	Start(ctx context.Context, soundID string) error
	Stop()
}

// Trigger is the part of the trigger controller the flow drives.
type Trigger interface {
	Evaluate(ctx context.Context, now time.Time) (*alarm.Alarm, bool)
	Dismiss(ctx context.Context) (*alarm.Alarm, bool)
	Snooze(ctx context.Context, d time.Duration) (time.Time, bool)
}

// Option configures a Flow.
type Option func(*Flow)

// WithRand sets the random source for puzzle layouts.
func WithRand(rng *rand.Rand) Option {
	return func(f *Flow) {
		if rng != nil {
			f.rng = rng
		}
	}
}

// WithCanvas sets the puzzle canvas size.
func WithCanvas(width, height float64) Option {
	return func(f *Flow) {
		f.width = width
		f.height = height
	}
}

// WithDefaultDifficulty sets the dot count for alarms without one.
func WithDefaultDifficulty(dots int) Option {
	return func(f *Flow) {
		if dots > 0 {
			f.defaultDifficulty = dots
		}
	}
}

// WithSnooze sets the snooze length.
func WithSnooze(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.snooze = d
		}
	}
}

// WithTickInterval sets the period of the puzzle elapsed timer.
func WithTickInterval(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.tickInterval = d
		}
	}
}

// WithPublisher registers a callback receiving a snapshot after every change.
// It is called with the flow lock held, in mutation order, and must not block
// or call back into the flow.
func WithPublisher(publish func(View)) Option {
	return func(f *Flow) {
		f.publish = publish
	}
}

// Flow is the notification state machine.
type Flow struct {
	// trigger owns the active slot and the dismiss/snooze transitions.
	trigger Trigger
	// tone plays while ringing and solving.
	tone TonePlayer
	// rng lays out puzzles.
	rng *rand.Rand
	// width and height are the puzzle canvas size.
	width, height float64
	// defaultDifficulty is used when the alarm sets no dot count.
	defaultDifficulty int
	// snooze is the snooze length.
	snooze time.Duration
	// tickInterval is the puzzle timer period.
	tickInterval time.Duration
	// publish receives snapshots after changes.
	publish func(View)

	// phase is the current stage.
	phase Phase
	// active is the alarm being presented.
	active *alarm.Alarm
	// puzzle is the running or solved instance.
	puzzle *puzzle.Puzzle
	// stopTimer ends the elapsed timer goroutine.
	stopTimer chan struct{}
	// mu serialises every operation, including timer ticks.
	mu sync.Mutex
}

// New creates an idle flow.
func New(trigger Trigger, tone TonePlayer, opts ...Option) *Flow {
	f := &Flow{
		trigger:           trigger,
		tone:              tone,
		rng:               puzzle.NewRand(),
		width:             puzzle.DefaultWidth,
		height:            puzzle.DefaultHeight,
		defaultDifficulty: alarm.DefaultDifficulty,
		snooze:            DefaultSnooze,
		tickInterval:      clock.TickInterval,
		phase:             PhaseIdle,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Tick evaluates triggers at now and starts ringing when an alarm activates.
func (f *Flow) Tick(ctx context.Context, now time.Time) (*alarm.Alarm, bool) {
	var (
		activated *alarm.Alarm
		ok        bool
	)

	_ = f.mutate(func() error {
		activated, ok = f.trigger.Evaluate(ctx, now)
		if !ok {
			return errNoChange
		}

		f.active = activated.Clone()
		f.phase = PhaseRinging
		f.startTone(ctx)

		return nil
	})

	return activated, ok
}

// BeginPuzzle lays out a puzzle for the active alarm and starts the timer.
// A placement failure leaves the flow ringing.
func (f *Flow) BeginPuzzle(ctx context.Context) (puzzle.View, error) {
	var view puzzle.View

	err := f.mutate(func() error {
		if f.phase != PhaseRinging {
			return fmt.Errorf("begin puzzle while %s: %w", f.phase, ErrInvalidPhase)
		}

		dots := f.active.DifficultyOr(f.defaultDifficulty)

		p, err := puzzle.Generate(f.rng, dots, f.width, f.height)
		if err != nil {
			logger.ErrorKV(ctx, "Puzzle layout failed", "alarm_id", f.active.ID, "dots", dots, "error", err)

			return fmt.Errorf("begin puzzle: %w", err)
		}

		if err = p.Start(); err != nil {
			return fmt.Errorf("begin puzzle: %w", err)
		}

		f.puzzle = p
		f.phase = PhaseSolving
		f.startTimer(context.WithoutCancel(ctx), p)
		view = p.View()

		logger.InfoKV(ctx, "Puzzle started", "alarm_id", f.active.ID, "dots", dots)

		return nil
	})

	return view, err
}

// SelectDot forwards a click to the puzzle. Completing it stops the timer and
// the tone and moves the flow to resolved.
func (f *Flow) SelectDot(ctx context.Context, id int) (puzzle.Selection, error) {
	var selection puzzle.Selection

	err := f.mutate(func() error {
		if f.phase != PhaseSolving {
			return fmt.Errorf("select dot while %s: %w", f.phase, ErrInvalidPhase)
		}

		var err error

		selection, err = f.puzzle.Select(id)
		if err != nil {
			return fmt.Errorf("select dot: %w", err)
		}

		if !selection.Accepted {
			return errNoChange
		}

		if selection.Complete {
			f.stopTimerLocked()
			f.tone.Stop()
			f.phase = PhaseResolved

			logger.InfoKV(ctx, "Puzzle solved",
				"alarm_id", f.active.ID,
				"elapsed", puzzle.FormatElapsed(f.puzzle.Elapsed()))
		}

		return nil
	})

	return selection, err
}

// MovePointer updates the preview line. It reports whether a preview is shown.
func (f *Flow) MovePointer(x, y float64) (bool, error) {
	var shown bool

	err := f.mutate(func() error {
		if f.phase != PhaseSolving {
			return fmt.Errorf("move pointer while %s: %w", f.phase, ErrInvalidPhase)
		}

		shown = f.puzzle.MovePointer(x, y)

		return nil
	})

	return shown, err
}

// LeavePointer clears the preview line.
func (f *Flow) LeavePointer() error {
	return f.mutate(func() error {
		if f.phase != PhaseSolving {
			return fmt.Errorf("leave pointer while %s: %w", f.phase, ErrInvalidPhase)
		}

		f.puzzle.LeavePointer()

		return nil
	})
}

// CancelPuzzle abandons the puzzle and returns to ringing. The tone is untouched.
func (f *Flow) CancelPuzzle(ctx context.Context) error {
	return f.mutate(func() error {
		if f.phase != PhaseSolving {
			return fmt.Errorf("cancel puzzle while %s: %w", f.phase, ErrInvalidPhase)
		}

		if err := f.puzzle.Cancel(); err != nil {
			return fmt.Errorf("cancel puzzle: %w", err)
		}

		f.stopTimerLocked()
		f.puzzle = nil
		f.phase = PhaseRinging

		logger.InfoKV(ctx, "Puzzle cancelled", "alarm_id", f.active.ID)

		return nil
	})
}

// Dismiss resolves the alarm for this minute and returns to idle.
func (f *Flow) Dismiss(ctx context.Context) (*alarm.Alarm, error) {
	var dismissed *alarm.Alarm

	err := f.mutate(func() error {
		if f.phase != PhaseResolved {
			return fmt.Errorf("dismiss while %s: %w", f.phase, ErrInvalidPhase)
		}

		f.tone.Stop()
		dismissed, _ = f.trigger.Dismiss(ctx)
		f.resetLocked()

		return nil
	})

	return dismissed, err
}

// Snooze suppresses the alarm for the configured duration and returns to idle.
// It returns the deadline; zero if the alarm was removed while ringing.
func (f *Flow) Snooze(ctx context.Context) (time.Time, error) {
	var until time.Time

	err := f.mutate(func() error {
		if f.phase != PhaseResolved {
			return fmt.Errorf("snooze while %s: %w", f.phase, ErrInvalidPhase)
		}

		f.tone.Stop()
		until, _ = f.trigger.Snooze(ctx, f.snooze)
		f.resetLocked()

		return nil
	})

	return until, err
}

// Close stops the timer and the tone.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopTimerLocked()
	f.tone.Stop()
}

// Phase returns the current stage.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.phase
}

// View returns a render-ready snapshot.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.viewLocked()
}

// errNoChange tells mutate that nothing needs publishing.
var errNoChange = errors.New("no change")

// mutate runs fn under the lock and publishes the resulting view on success.
// Views are published before unlocking so subscribers see them in mutation order.
func (f *Flow) mutate(fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := fn()
	if errors.Is(err, errNoChange) {
		return nil
	}

	if err == nil {
		f.publishLocked()
	}

	return err
}

// publishLocked hands the current view to the publisher, which must not block
// or call back into the flow.
func (f *Flow) publishLocked() {
	if f.publish != nil {
		f.publish(f.viewLocked())
	}
}

func (f *Flow) startTone(ctx context.Context) {
	if err := f.tone.Start(ctx, f.active.SoundType); err != nil {
		logger.WarnKV(ctx, "Failed to start alarm tone", "alarm_id", f.active.ID, "error", err)
	}
}

func (f *Flow) resetLocked() {
	f.stopTimerLocked()
	f.active = nil
	f.puzzle = nil
	f.phase = PhaseIdle
}

// startTimer runs the 1 Hz elapsed counter for p until stopTimerLocked.
func (f *Flow) startTimer(ctx context.Context, p *puzzle.Puzzle) {
	f.stopTimerLocked()

	stop := make(chan struct{})
	f.stopTimer = stop

	go f.runTimer(ctx, p, stop)
}

func (f *Flow) runTimer(ctx context.Context, p *puzzle.Puzzle, stop <-chan struct{}) {
	ticker := time.NewTicker(f.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			f.mu.Lock()

			// Teardown may race with a tick already waiting for the lock.
			if f.puzzle != p || p.Status() != puzzle.StatusInProgress {
				f.mu.Unlock()

				return
			}

			p.Tick()
			f.publishLocked()
			elapsed := p.Elapsed()
			f.mu.Unlock()

			logger.DebugKV(ctx, "Puzzle tick", "elapsed", elapsed)
		}
	}
}

func (f *Flow) stopTimerLocked() {
	if f.stopTimer == nil {
		return
	}

	close(f.stopTimer)
	f.stopTimer = nil
}
