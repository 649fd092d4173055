// Package notification drives the life cycle of an active alarm.
//
// A Flow moves through idle, ringing, solving and resolved. It starts the
// tone when the trigger controller activates an alarm, runs a puzzle with a
// 1 Hz elapsed timer while the user solves it, stops the tone once the puzzle
// is solved, and hands the dismiss or snooze decision back to the controller.
package notification
