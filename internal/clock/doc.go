// Package clock is the wall-clock source of the alarm clock.
//
// Clock abstracts "now" so trigger evaluation and snooze deadlines can be
// driven by a fixed or manually advanced time in tests, and the Format
// helpers render the visible clock the way the browser front end shows it.
package clock
