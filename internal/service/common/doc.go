// Package common holds helpers shared by the command-line services.
//
// It provides a resty-based client for the alarm clock HTTP API with per-call
// timeouts, and detects the current system actor
// (hostname/username) so the server can log who issued a request.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
