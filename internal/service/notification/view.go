package notification

import (
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/puzzle"
)

// View is the snapshot the front end renders.
type View struct {
	// Phase is the current stage.
	Phase Phase `json:"phase"`
	// Alarm is the active alarm, absent when idle.
	Alarm *alarm.Alarm `json:"alarm,omitempty"`
	// DisplayTime is the alarm time as "7:05 AM".
	DisplayTime string `json:"displayTime,omitempty"`
	// Puzzle is the running or solved puzzle.
	Puzzle *puzzle.View `json:"puzzle,omitempty"`
	// SolvedIn is the MM:SS solve time once resolved.
	SolvedIn string `json:"solvedIn,omitempty"`
}

func (f *Flow) viewLocked() View {
	v := View{
		Phase: f.phase,
	}

	if f.active != nil {
		v.Alarm = f.active.Clone()
		v.DisplayTime = f.active.DisplayTime()
	}

	if f.puzzle != nil {
		pv := f.puzzle.View()
		v.Puzzle = &pv
	}

	if f.phase == PhaseResolved && f.puzzle != nil {
		v.SolvedIn = puzzle.FormatElapsed(f.puzzle.Elapsed())
	}

	return v
}
