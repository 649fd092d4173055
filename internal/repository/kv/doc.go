// Package kv implements the key-value persistence behind the alarm store.
//
// Store is the opaque collaborator the alarm list and snooze map are written
// to. FileStore keeps one JSON document per key on disk, RedisStore and
// SQLiteStore keep them in a Redis server or an SQLite database. Open picks
// the backend from the storage settings.
package kv
