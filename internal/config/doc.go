// Package config defines the alarm clock settings and provides helpers to
// load, validate and save them in YAML format.
//
// Config covers the HTTP listen address, logging level, tick and snooze
// durations, puzzle canvas, storage backend and audio output.
package config
