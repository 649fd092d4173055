// Package trigger decides, once per clock tick, which alarm becomes active.
//
// The Controller owns the single active-alarm slot and the set of alarms
// dismissed during the current minute. An alarm fires when its HH:MM equals
// the current minute key, or when its snooze record has just run out.
package trigger
