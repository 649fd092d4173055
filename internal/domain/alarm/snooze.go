package alarm

import "time"

// Snoozes maps alarm IDs to the epoch millisecond until which the alarm is suppressed.
type Snoozes map[string]int64

// Until returns the suppression deadline for id.
func (s Snoozes) Until(id string) (time.Time, bool) {
	ms, ok := s[id]
	if !ok {
		return time.Time{}, false
	}

	return time.UnixMilli(ms), true
}

// IsExpired reports whether a record with deadline untilMs is no longer in effect at now.
func IsExpired(untilMs int64, now time.Time) bool {
	return now.UnixMilli() >= untilMs
}

// Clone returns a copy of the snooze map.
func (s Snoozes) Clone() Snoozes {
	cloned := make(Snoozes, len(s))
	for id, until := range s {
		cloned[id] = until
	}

	return cloned
}
