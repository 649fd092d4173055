// Package client implements the command-line actions that talk to a running
// alarm-clock server: listing and editing alarms, browsing and previewing
// sounds, and reporting server status.
//
// Every action loads the shared settings, dials the server over HTTP and
// prints a table to the configured writer. Status can wait for a server that
// is still starting and, when none answers, reports any alarm-clock processes
// found on the local machine.
package client
