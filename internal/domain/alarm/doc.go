// Package alarm contains core domain types for the alarm clock.
//
// It defines Alarm (a user-defined wake-up time with puzzle difficulty and
// sound) and Snoozes (the per-alarm "suppressed until" records), together
// with time-string validation and Clone helpers to avoid leaking internal
// references.
package alarm
