// Package realtime fans server events out to SSE subscribers.
package realtime
