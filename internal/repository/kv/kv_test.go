package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
)

// exerciseStore runs the shared Get/Set contract against a backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()

	_, err := store.Get(ctx, "alarm-clock-alarms")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "alarm-clock-alarms", []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Set(ctx, "alarm-clock-snooze", []byte(`{}`)))

	got, err := store.Get(ctx, "alarm-clock-alarms")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, store.Set(ctx, "alarm-clock-alarms", []byte(`[]`)))

	got, err = store.Get(ctx, "alarm-clock-alarms")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	got, err = store.Get(ctx, "alarm-clock-snooze")
	require.NoError(t, err)
	require.Equal(t, `{}`, string(got))
}

// TestFileStore_Roundtrip checks the file backend and its on-disk layout.
func TestFileStore_Roundtrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	exerciseStore(t, store)
	require.NoError(t, store.Close())

	_, err = os.Stat(filepath.Join(dir, "alarm-clock-alarms.json"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "alarm-clock-alarms.json.tmp"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileStore_RejectsEscapingKeys keeps keys inside the data directory.
func TestFileStore_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../x", "a/b", `a\b`} {
		_, err = store.Get(context.Background(), key)
		require.ErrorIs(t, err, errInvalidKey, key)
		require.ErrorIs(t, store.Set(context.Background(), key, nil), errInvalidKey, key)
	}
}

// TestSQLiteStore_Roundtrip checks the sqlite backend on a temporary database.
func TestSQLiteStore_Roundtrip(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "alarms.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	exerciseStore(t, store)
}

// TestRedisStore_Roundtrip runs against a live server when ALARM_CLOCK_REDIS_ADDR is set.
func TestRedisStore_Roundtrip(t *testing.T) {
	addr := os.Getenv("ALARM_CLOCK_REDIS_ADDR")
	if addr == "" {
		t.Skip("ALARM_CLOCK_REDIS_ADDR is not set")
	}

	ctx := context.Background()

	store, err := OpenRedisStore(ctx, addr, "", 15)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.client.FlushDB(ctx).Err()
		require.NoError(t, store.Close())
	})

	require.NoError(t, store.client.FlushDB(ctx).Err())
	exerciseStore(t, store)
}

// TestOpen selects backends from settings.
func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, err := Open(ctx, config.Storage{Backend: config.BackendFile, Path: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, new(FileStore), store)

	store, err = Open(ctx, config.Storage{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	require.IsType(t, new(SQLiteStore), store)
	require.NoError(t, store.Close())

	store, err = Open(ctx, config.Storage{Backend: "etcd"})
	require.ErrorIs(t, err, errUnsupportedBackend)
	require.Nil(t, store)
}
