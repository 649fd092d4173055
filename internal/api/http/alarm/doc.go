// Package alarm implements the HTTP transport for the alarm clock.
//
// It exposes the alarm list, the sound catalog, the clock reading and the
// notification flow as a JSON API on a chi router, and streams tick, alarm and
// notification updates to the browser over server-sent events.
package alarm
