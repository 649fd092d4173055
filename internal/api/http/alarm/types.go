package alarm

import (
	"time"

	"github.com/oshokin/alarm-clock/internal/audio"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// AlarmView is an alarm as the front end renders it.
type AlarmView struct {
	domain.Alarm

	// DisplayTime is the 12-hour rendering, e.g. "7:05 AM".
	DisplayTime string `json:"displayTime"`
	// SnoozedUntil is set while a snooze record exists.
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
}

// SoundsResponse is the catalog plus the sound being previewed.
type SoundsResponse struct {
	Sounds     []audio.Sound `json:"sounds"`
	Previewing string        `json:"previewing,omitempty"`
}

// PointerRequest is a pointer position on the puzzle canvas.
type PointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerResponse tells whether a preview line is drawn.
type PointerResponse struct {
	Shown bool `json:"shown"`
}

// SnoozeResponse carries the snooze deadline.
type SnoozeResponse struct {
	Until time.Time `json:"until"`
}

// DismissResponse carries the dismissed alarm.
type DismissResponse struct {
	Alarm *domain.Alarm `json:"alarm,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	// Code is a stable machine-readable identifier.
	Code string `json:"error"`
	// Message is the human-readable cause.
	Message string `json:"message"`
}
