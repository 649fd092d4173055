package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/repository/kv"
)

var errWriteFailed = errors.New("write failed")

// memoryStore is an in-memory kv.Store used in tests.
type memoryStore struct {
	data    map[string][]byte
	failSet bool
	sets    int
	mu      sync.Mutex
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}

	return append([]byte(nil), value...), nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sets++

	if m.failSet {
		return errWriteFailed
	}

	m.data[key] = append([]byte(nil), value...)

	return nil
}

func (m *memoryStore) Close() error {
	return nil
}

type fakeCatalog map[string]bool

func (c fakeCatalog) Has(id string) bool {
	return c[id]
}

func sequentialIDs() func() string {
	next := 0

	return func() string {
		next++

		return fmt.Sprintf("id-%02d", next)
	}
}

func newTestStore(t *testing.T, backend kv.Store, manual *clock.Manual) *Store {
	t.Helper()

	store := New(backend,
		WithClock(manual),
		WithIDGenerator(sequentialIDs()),
		WithSoundCatalog(fakeCatalog{"alarm1": true, "alarm2": true}),
	)
	require.NoError(t, store.Load(context.Background()))

	return store
}

// TestStore_AddPersistsAndReloads checks that a new store over the same backend sees saved alarms.
func TestStore_AddPersistsAndReloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newMemoryStore()
	manual := clock.NewManual(time.Date(2026, 10, 19, 6, 0, 0, 0, time.Local))

	store := newTestStore(t, backend, manual)
	created, err := store.Add(ctx, NewAlarm{Time: "07:30", Label: "Gym", DifficultyLevel: 12, SoundType: "alarm2"})
	require.NoError(t, err)
	require.True(t, created.Enabled)
	require.Equal(t, "id-01", created.ID)

	reloaded := New(backend)
	require.NoError(t, reloaded.Load(ctx))

	list := reloaded.List()
	require.Len(t, list, 1)
	require.Equal(t, alarm.Alarm{
		ID:              "id-01",
		Time:            "07:30",
		Enabled:         true,
		Label:           "Gym",
		DifficultyLevel: 12,
		SoundType:       "alarm2",
	}, list[0])
}

// TestStore_AddValidation rejects bad time, difficulty and sound.
func TestStore_AddValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newMemoryStore()
	store := newTestStore(t, backend, clock.NewManual(time.Now()))

	_, err := store.Add(ctx, NewAlarm{Time: "24:00"})
	require.ErrorIs(t, err, alarm.ErrInvalidTime)

	_, err = store.Add(ctx, NewAlarm{Time: "07:00", DifficultyLevel: 99})
	require.ErrorIs(t, err, alarm.ErrInvalidDifficulty)

	_, err = store.Add(ctx, NewAlarm{Time: "07:00", SoundType: "siren"})
	require.ErrorIs(t, err, ErrUnknownSound)

	require.Empty(t, store.List())
	require.Zero(t, backend.sets)
}

// TestStore_ListSortedByTime ensures List orders by time regardless of insertion order.
func TestStore_ListSortedByTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, newMemoryStore(), clock.NewManual(time.Now()))

	for _, value := range []string{"09:00", "06:15", "07:30"} {
		_, err := store.Add(ctx, NewAlarm{Time: value})
		require.NoError(t, err)
	}

	times := make([]string, 0, 3)
	for _, a := range store.List() {
		times = append(times, a.Time)
	}

	require.Equal(t, []string{"06:15", "07:30", "09:00"}, times)
}

// TestStore_ToggleAndRemove covers flag flipping, snooze cleanup and unknown ids.
func TestStore_ToggleAndRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manual := clock.NewManual(time.Date(2026, 10, 19, 7, 0, 0, 0, time.Local))
	store := newTestStore(t, newMemoryStore(), manual)

	created, err := store.Add(ctx, NewAlarm{Time: "07:00"})
	require.NoError(t, err)

	toggled, ok := store.Toggle(ctx, created.ID)
	require.True(t, ok)
	require.False(t, toggled.Enabled)
	require.Empty(t, store.Enabled())

	toggled, ok = store.Toggle(ctx, created.ID)
	require.True(t, ok)
	require.True(t, toggled.Enabled)

	_, ok = store.Toggle(ctx, "missing")
	require.False(t, ok)

	_, ok = store.Snooze(ctx, created.ID, time.Minute)
	require.True(t, ok)

	require.True(t, store.Remove(ctx, created.ID))
	require.False(t, store.Remove(ctx, created.ID))

	_, ok = store.SnoozedUntil(created.ID)
	require.False(t, ok)
	require.Empty(t, store.List())
}

// TestStore_SnoozeLifecycle checks deadlines, expiry and the lazy purge.
func TestStore_SnoozeLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2026, 10, 19, 8, 0, 47, 0, time.Local)
	manual := clock.NewManual(start)
	backend := newMemoryStore()
	store := newTestStore(t, backend, manual)

	created, err := store.Add(ctx, NewAlarm{Time: "08:00"})
	require.NoError(t, err)

	until, ok := store.Snooze(ctx, created.ID, 0)
	require.True(t, ok)
	require.Equal(t, start.Add(DefaultSnooze).UnixMilli(), until.UnixMilli())

	require.True(t, store.IsSnoozed(ctx, created.ID))
	require.True(t, store.IsSnoozedAt(created.ID, start.Add(4*time.Minute)))
	require.False(t, store.IsSnoozedAt(created.ID, until))

	var persisted map[string]int64
	require.NoError(t, json.Unmarshal(backend.data[SnoozesKey], &persisted))
	require.Equal(t, until.UnixMilli(), persisted[created.ID])

	manual.Set(until)
	require.False(t, store.IsSnoozed(ctx, created.ID))

	_, ok = store.SnoozedUntil(created.ID)
	require.False(t, ok)

	_, ok = store.Snooze(ctx, "missing", time.Minute)
	require.False(t, ok)
}

// TestStore_PurgeExpired removes only lapsed records.
func TestStore_PurgeExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.Local)
	store := newTestStore(t, newMemoryStore(), clock.NewManual(start))

	first, err := store.Add(ctx, NewAlarm{Time: "08:00"})
	require.NoError(t, err)

	second, err := store.Add(ctx, NewAlarm{Time: "08:00"})
	require.NoError(t, err)

	store.Snooze(ctx, first.ID, time.Minute)
	store.Snooze(ctx, second.ID, 10*time.Minute)

	purged := store.PurgeExpired(ctx, start.Add(2*time.Minute))
	require.Equal(t, alarm.Snoozes{first.ID: start.Add(time.Minute).UnixMilli()}, purged)
	require.False(t, store.IsSnoozedAt(first.ID, start))
	require.True(t, store.IsSnoozedAt(second.ID, start.Add(2*time.Minute)))

	store.ClearSnooze(ctx, second.ID)
	require.Empty(t, store.PurgeExpired(ctx, start.Add(time.Hour)))
}

// TestStore_WriteFailureKeepsMemory ensures persistence errors never undo a mutation.
func TestStore_WriteFailureKeepsMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newMemoryStore()
	backend.failSet = true
	store := newTestStore(t, backend, clock.NewManual(time.Now()))

	created, err := store.Add(ctx, NewAlarm{Time: "07:00"})
	require.NoError(t, err)

	got, ok := store.Get(created.ID)
	require.True(t, ok)
	require.Equal(t, created, got)
	require.Positive(t, backend.sets)
}

// TestStore_LoadRejectsCorruptDocument surfaces decode errors.
func TestStore_LoadRejectsCorruptDocument(t *testing.T) {
	t.Parallel()

	backend := newMemoryStore()
	backend.data[AlarmsKey] = []byte("{not json")

	err := New(backend).Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), AlarmsKey)
}

// TestStore_LoadSkipsInvalidRecords drops stored alarms that break the model.
func TestStore_LoadSkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	backend := newMemoryStore()
	backend.data[AlarmsKey] = []byte(`[
		{"id":"ok","time":"07:00","enabled":true},
		{"id":"late","time":"25:00","enabled":true},
		{"id":"short","time":"7:00","enabled":true},
		{"id":"hard","time":"08:00","enabled":true,"difficultyLevel":99},
		{"id":"","time":"09:00","enabled":true},
		{"id":"ok","time":"10:00","enabled":false}
	]`)
	backend.data[SnoozesKey] = []byte(`{"ok":1790000000000,"late":1790000000000}`)

	store := New(backend)
	require.NoError(t, store.Load(context.Background()))

	list := store.List()
	require.Len(t, list, 1)
	require.Equal(t, "ok", list[0].ID)
	require.Equal(t, "07:00", list[0].Time)

	_, ok := store.SnoozedUntil("ok")
	require.True(t, ok)

	_, ok = store.SnoozedUntil("late")
	require.False(t, ok, "snoozes of skipped alarms are dropped")
}

// TestStore_FileBackend runs a short scenario over the real file store.
func TestStore_FileBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	backend, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)

	store := New(backend)
	require.NoError(t, store.Load(ctx))

	created, err := store.Add(ctx, NewAlarm{Time: "06:45", Label: "Run"})
	require.NoError(t, err)

	reloaded := New(backend)
	require.NoError(t, reloaded.Load(ctx))

	got, ok := reloaded.Get(created.ID)
	require.True(t, ok)
	require.Equal(t, "Run", got.Label)
}
