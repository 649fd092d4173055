// Package alarms is the alarm store: it owns the alarm list and the snooze
// records, validates new alarms, and persists both to a key-value store after
// every mutation. The in-memory state is authoritative for the session; a
// failed write is logged and never rolls the mutation back.
package alarms
