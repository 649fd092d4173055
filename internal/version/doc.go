// Package version exposes build metadata for alarm-clock.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
// Full renders them for the version command; UserAgent tags API requests
// sent by the command-line client.
package version
