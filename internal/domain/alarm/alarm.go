package alarm

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	// TimeLayout is the 24-hour minute-resolution layout used for alarm times.
	TimeLayout = "15:04"

	// MinDifficulty is the smallest accepted dot count for a puzzle.
	MinDifficulty = 1
	// MaxDifficulty is the largest accepted dot count for a puzzle.
	MaxDifficulty = 16
	// DefaultDifficulty is the dot count used when an alarm does not set one.
	DefaultDifficulty = 8
)

var (
	// ErrInvalidTime is returned when a time string is not a valid HH:MM value.
	ErrInvalidTime = errors.New("time must match HH:MM with 00<=HH<=23 and 00<=MM<=59")
	// ErrInvalidDifficulty is returned when the dot count is out of range.
	ErrInvalidDifficulty = errors.New("difficulty level is out of range")
)

// Alarm is a user-defined wake-up time.
type Alarm struct {
	// ID is the opaque unique identifier of the alarm.
	ID string `json:"id"`
	// Time is the HH:MM (24-hour) trigger time.
	Time string `json:"time"`
	// Enabled tells whether the alarm takes part in trigger evaluation.
	Enabled bool `json:"enabled"`
	// Label is an optional user text.
	Label string `json:"label,omitempty"`
	// DifficultyLevel is the optional puzzle dot count; zero means default.
	DifficultyLevel int `json:"difficultyLevel,omitempty"`
	// SoundType is an optional sound catalog identifier; empty means default tone.
	SoundType string `json:"soundType,omitempty"`
}

// Clone returns a copy of the alarm.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Difficulty returns the puzzle dot count for the alarm, falling back to DefaultDifficulty.
func (a *Alarm) Difficulty() int {
	return a.DifficultyOr(DefaultDifficulty)
}

// DifficultyOr returns the puzzle dot count for the alarm, falling back to fallback.
func (a *Alarm) DifficultyOr(fallback int) int {
	if a.DifficultyLevel <= 0 {
		return fallback
	}

	return a.DifficultyLevel
}

// DisplayTime renders the alarm time in 12-hour form, e.g. "7:05 AM".
func (a *Alarm) DisplayTime() string {
	return FormatTime12h(a.Time)
}

// ValidateTime checks that value is a strict HH:MM string.
func ValidateTime(value string) error {
	if len(value) != len(TimeLayout) || value[2] != ':' {
		return fmt.Errorf("%q: %w", value, ErrInvalidTime)
	}

	hours, errHours := strconv.Atoi(value[:2])
	minutes, errMinutes := strconv.Atoi(value[3:])

	if errHours != nil || errMinutes != nil ||
		hours < 0 || hours > 23 || minutes < 0 || minutes > 59 ||
		value[0] == '+' || value[3] == '+' || value[0] == '-' || value[3] == '-' {
		return fmt.Errorf("%q: %w", value, ErrInvalidTime)
	}

	return nil
}

// ValidateDifficulty checks an optional dot count; zero means "use the default".
func ValidateDifficulty(level int) error {
	if level == 0 {
		return nil
	}

	if level < MinDifficulty || level > MaxDifficulty {
		return fmt.Errorf("%d not in [%d, %d]: %w", level, MinDifficulty, MaxDifficulty, ErrInvalidDifficulty)
	}

	return nil
}

// MinuteKey formats t at minute resolution for matching against alarm times.
func MinuteKey(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatTime12h renders an HH:MM string as "h:MM AM/PM". Invalid input is returned as is.
func FormatTime12h(value string) string {
	if ValidateTime(value) != nil {
		return value
	}

	hours, _ := strconv.Atoi(value[:2])

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}

	displayHours := hours % 12
	if displayHours == 0 {
		displayHours = 12
	}

	return fmt.Sprintf("%d:%s %s", displayHours, value[3:], period)
}
