// Package integration runs the alarm-clock server on a real port and drives
// it through the command-line client packages.
package integration
