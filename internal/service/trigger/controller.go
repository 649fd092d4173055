package trigger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// SnoozeGrace bounds how long after its deadline a lapsed snooze may be first
// observed and still fire. Older records, e.g. left over from a stopped
// process, are purged silently.
const SnoozeGrace = time.Minute

// AlarmStore is the part of the alarm store the controller reads and mutates.
type AlarmStore interface {
	Enabled() []alarm.Alarm
	IsSnoozedAt(id string, now time.Time) bool
	PurgeExpired(ctx context.Context, now time.Time) alarm.Snoozes
	Snooze(ctx context.Context, id string, d time.Duration) (time.Time, bool)
	ClearSnooze(ctx context.Context, id string)
}

// Controller evaluates triggers and owns the active-alarm slot.
type Controller struct {
	// store holds alarms and snooze records.
	store AlarmStore
	// active is the alarm being presented, nil when none.
	active *alarm.Alarm
	// dismissed holds ids dismissed during lastMinute.
	dismissed map[string]struct{}
	// lastMinute is the minute key seen on the previous evaluation.
	lastMinute string
	// pending holds alarms whose snooze lapsed and which have not rung since,
	// e.g. because another alarm held the slot.
	pending map[string]struct{}
	// mu makes every operation atomic with respect to a tick.
	mu sync.Mutex
}

// New creates a controller over store.
func New(store AlarmStore) *Controller {
	return &Controller{
		store:     store,
		dismissed: make(map[string]struct{}),
		pending:   make(map[string]struct{}),
	}
}

// Evaluate runs one tick at now and returns the alarm that became active, if any.
func (c *Controller) Evaluate(ctx context.Context, now time.Time) (*alarm.Alarm, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	minute := alarm.MinuteKey(now)
	if minute != c.lastMinute {
		if len(c.dismissed) > 0 {
			logger.DebugKV(ctx, "Minute changed, dismissed set cleared", "minute", minute)
		}

		c.dismissed = make(map[string]struct{})
		c.lastMinute = minute
	}

	// Snoozes are purged every tick so a lapse is seen on time even while
	// another alarm holds the slot.
	for id, untilMs := range c.store.PurgeExpired(ctx, now) {
		until := time.UnixMilli(untilMs)
		if now.Sub(until) >= SnoozeGrace {
			logger.DebugKV(ctx, "Stale snooze dropped", "alarm_id", id, "until", until)
			continue
		}

		c.pending[id] = struct{}{}
	}

	if c.active != nil {
		return nil, false
	}

	enabled := c.store.Enabled()
	enabledIDs := make(map[string]struct{}, len(enabled))
	candidates := make([]alarm.Alarm, 0)

	for _, a := range enabled {
		enabledIDs[a.ID] = struct{}{}

		if _, ok := c.dismissed[a.ID]; ok {
			continue
		}

		if _, ok := c.pending[a.ID]; ok {
			candidates = append(candidates, a)
			continue
		}

		if a.Time == minute && !c.store.IsSnoozedAt(a.ID, now) {
			candidates = append(candidates, a)
		}
	}

	// Removed or disabled alarms lose their retrigger.
	for id := range c.pending {
		if _, ok := enabledIDs[id]; !ok {
			delete(c.pending, id)
		}
	}

	if len(candidates) == 0 {
		return nil, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})

	c.active = candidates[0].Clone()
	delete(c.pending, c.active.ID)

	logger.InfoKV(ctx, "Alarm triggered", "alarm_id", c.active.ID, "time", c.active.Time, "minute", minute)

	return c.active.Clone(), true
}

// Active returns a copy of the active alarm, or nil.
func (c *Controller) Active() *alarm.Alarm {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active.Clone()
}

// Dismiss resolves the active alarm for good: it may not fire again this
// minute and its snooze record is cleared.
func (c *Controller) Dismiss(ctx context.Context) (*alarm.Alarm, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, false
	}

	dismissed := c.active
	c.active = nil
	c.dismissed[dismissed.ID] = struct{}{}
	c.store.ClearSnooze(ctx, dismissed.ID)

	logger.InfoKV(ctx, "Alarm dismissed", "alarm_id", dismissed.ID)

	return dismissed, true
}

// Snooze suppresses the active alarm for d and clears the slot.
func (c *Controller) Snooze(ctx context.Context, d time.Duration) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return time.Time{}, false
	}

	id := c.active.ID
	c.active = nil

	until, ok := c.store.Snooze(ctx, id, d)
	if !ok {
		// The alarm was removed while ringing.
		logger.WarnKV(ctx, "Snoozed alarm no longer exists", "alarm_id", id)

		return time.Time{}, false
	}

	return until, true
}

// DismissedThisMinute reports whether id was dismissed in the current minute window.
func (c *Controller) DismissedThisMinute(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.dismissed[id]

	return ok
}
