// Package puzzle implements the connect-the-dots challenge that guards an
// alarm.
//
// GenerateLayout places dots on a square canvas with random rejection
// sampling under a minimum-distance constraint and reports an explicit
// PlacementError when the canvas cannot hold the requested count.
// RecordSelection validates ordered clicks, and Puzzle tracks a single
// instance from presentation to solved or cancelled, including the elapsed
// seconds counter and the transient pointer preview line.
package puzzle
