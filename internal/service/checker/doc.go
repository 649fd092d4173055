// Package checker implements the watch command: it polls a running server
// for the notification flow and logs every phase change, so a terminal can
// follow alarms ringing, puzzles being solved and alarms being cleared.
package checker
