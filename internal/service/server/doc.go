// Package server runs the alarm clock process: it loads settings, opens the
// key-value store, wires the alarm store, trigger controller, notification
// flow and tone player together, drives them from a 1 Hz clock loop and
// serves the HTTP API until the context is cancelled.
package server
