package clock

import (
	"sync"
	"time"
)

const (
	// TickInterval is the period of the clock loop and of the puzzle elapsed counter.
	TickInterval = time.Second

	// DisplayTimeLayout renders the visible clock, e.g. "07:05:09 AM".
	DisplayTimeLayout = "03:04:05 PM"
	// DisplayDateLayout renders the visible date, e.g. "Monday, October 19, 2026".
	DisplayDateLayout = "Monday, January 2, 2006"
)

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// System is the Clock backed by time.Now.
type System struct{}

// Now returns the local wall-clock time.
func (System) Now() time.Time {
	return time.Now()
}

// Manual is a Clock whose time only moves when told to.
type Manual struct {
	// now is the current fake time.
	now time.Time
	// mu protects now.
	mu sync.Mutex
}

// NewManual returns a Manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now: start,
	}
}

// Now returns the current fake time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = t
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)

	return m.now
}

// Reading is the formatted view of a single clock tick.
type Reading struct {
	// Time is the 12-hour clock with seconds.
	Time string `json:"time"`
	// Date is the long date.
	Date string `json:"date"`
	// Minute is the HH:MM key alarms are matched against.
	Minute string `json:"minute"`
}

// Read formats t for display and matching.
func Read(t time.Time) Reading {
	return Reading{
		Time:   t.Format(DisplayTimeLayout),
		Date:   t.Format(DisplayDateLayout),
		Minute: t.Format("15:04"),
	}
}
