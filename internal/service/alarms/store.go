package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/kv"
)

const (
	// AlarmsKey is the key holding the JSON array of alarms.
	AlarmsKey = "alarm-clock-alarms"
	// SnoozesKey is the key holding the JSON object of id -> epoch milliseconds.
	SnoozesKey = "alarm-clock-snooze"
	// DefaultSnooze is used when Snooze is called without a positive duration.
	DefaultSnooze = 5 * time.Minute
)

var (
	// ErrUnknownSound is returned when an alarm names a sound outside the catalog.
	ErrUnknownSound = errors.New("unknown sound type")

	// errMissingID marks a stored alarm without an id.
	errMissingID = errors.New("alarm id is empty")
	// errDuplicateID marks a stored alarm whose id was already loaded.
	errDuplicateID = errors.New("alarm id is duplicated")
)

// NewAlarm carries the user input for Add.
type NewAlarm struct {
	Time            string `json:"time"`
	Label           string `json:"label,omitempty"`
	DifficultyLevel int    `json:"difficultyLevel,omitempty"`
	SoundType       string `json:"soundType,omitempty"`
}

// SoundCatalog tells whether a sound identifier exists.
type SoundCatalog interface {
	Has(id string) bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for snooze deadlines.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSoundCatalog enables validation of SoundType on Add.
func WithSoundCatalog(catalog SoundCatalog) Option {
	return func(s *Store) {
		s.sounds = catalog
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithDefaultSnooze sets the snooze length used when none is given.
func WithDefaultSnooze(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.defaultSnooze = d
		}
	}
}

// Store owns the alarm list and snooze records.
type Store struct {
	// kv persists both documents.
	kv kv.Store
	// clock supplies "now" for snooze deadlines.
	clock clock.Clock
	// sounds validates sound identifiers when set.
	sounds SoundCatalog
	// newID generates alarm identifiers.
	newID func() string
	// defaultSnooze is the snooze length for non-positive requests.
	defaultSnooze time.Duration
	// alarms in insertion order.
	alarms []alarm.Alarm
	// snoozes maps id to the suppression deadline.
	snoozes alarm.Snoozes
	// mu protects alarms and snoozes and orders writes.
	mu sync.Mutex
}

// New creates an empty store backed by store. Call Load to read persisted state.
func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:            store,
		clock:         clock.System{},
		newID:         uuid.NewString,
		defaultSnooze: DefaultSnooze,
		alarms:        make([]alarm.Alarm, 0),
		snoozes:       make(alarm.Snoozes),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load replaces the in-memory state with the persisted documents.
// Missing keys are treated as empty.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms := make([]alarm.Alarm, 0)
	if err := s.read(ctx, AlarmsKey, &alarms); err != nil {
		return err
	}

	snoozes := make(alarm.Snoozes)
	if err := s.read(ctx, SnoozesKey, &snoozes); err != nil {
		return err
	}

	if alarms == nil {
		alarms = make([]alarm.Alarm, 0)
	}

	if snoozes == nil {
		snoozes = make(alarm.Snoozes)
	}

	s.alarms = validAlarms(ctx, alarms)
	s.snoozes = make(alarm.Snoozes, len(snoozes))

	for id, until := range snoozes {
		if s.indexOf(id) >= 0 {
			s.snoozes[id] = until
		}
	}

	logger.InfoKV(ctx, "Alarm store loaded", "alarms", len(s.alarms), "snoozes", len(s.snoozes))

	return nil
}

// validAlarms drops persisted records with an empty or duplicate id, a bad
// time or an out-of-range difficulty.
func validAlarms(ctx context.Context, loaded []alarm.Alarm) []alarm.Alarm {
	valid := make([]alarm.Alarm, 0, len(loaded))
	seen := make(map[string]struct{}, len(loaded))

	for _, a := range loaded {
		_, duplicate := seen[a.ID]

		var err error

		switch {
		case a.ID == "":
			err = errMissingID
		case duplicate:
			err = errDuplicateID
		default:
			err = errors.Join(alarm.ValidateTime(a.Time), alarm.ValidateDifficulty(a.DifficultyLevel))
		}

		if err != nil {
			logger.WarnKV(ctx, "Skipping invalid stored alarm", "alarm_id", a.ID, "time", a.Time, "error", err)
			continue
		}

		seen[a.ID] = struct{}{}
		valid = append(valid, a)
	}

	return valid
}

// Add validates input and appends a new enabled alarm.
func (s *Store) Add(ctx context.Context, input NewAlarm) (alarm.Alarm, error) {
	if err := alarm.ValidateTime(input.Time); err != nil {
		return alarm.Alarm{}, err
	}

	if err := alarm.ValidateDifficulty(input.DifficultyLevel); err != nil {
		return alarm.Alarm{}, err
	}

	if input.SoundType != "" && s.sounds != nil && !s.sounds.Has(input.SoundType) {
		return alarm.Alarm{}, fmt.Errorf("%q: %w", input.SoundType, ErrUnknownSound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := alarm.Alarm{
		ID:              s.newID(),
		Time:            input.Time,
		Enabled:         true,
		Label:           input.Label,
		DifficultyLevel: input.DifficultyLevel,
		SoundType:       input.SoundType,
	}

	s.alarms = append(s.alarms, created)
	s.persist(ctx)

	logger.InfoKV(ctx, "Alarm added", "alarm_id", created.ID, "time", created.Time)

	return created, nil
}

// Remove deletes the alarm and its snooze record. Unknown ids are ignored.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return false
	}

	s.alarms = append(s.alarms[:index], s.alarms[index+1:]...)
	delete(s.snoozes, id)
	s.persist(ctx)

	logger.InfoKV(ctx, "Alarm removed", "alarm_id", id)

	return true
}

// Toggle flips Enabled and returns the updated alarm. Unknown ids are ignored.
func (s *Store) Toggle(ctx context.Context, id string) (alarm.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return alarm.Alarm{}, false
	}

	s.alarms[index].Enabled = !s.alarms[index].Enabled
	s.persist(ctx)

	logger.InfoKV(ctx, "Alarm toggled", "alarm_id", id, "enabled", s.alarms[index].Enabled)

	return s.alarms[index], true
}

// Snooze suppresses the alarm until now+d (DefaultSnooze when d <= 0),
// overwriting any earlier record. Unknown ids are ignored.
func (s *Store) Snooze(ctx context.Context, id string, d time.Duration) (time.Time, bool) {
	if d <= 0 {
		d = s.defaultSnooze
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return time.Time{}, false
	}

	until := s.clock.Now().Add(d)
	s.snoozes[id] = until.UnixMilli()
	s.persist(ctx)

	logger.InfoKV(ctx, "Alarm snoozed", "alarm_id", id, "until", until.Format(time.RFC3339))

	return until, true
}

// IsSnoozed reports whether a non-expired snooze record exists for id.
// Reading an expired record deletes it and persists the snooze map.
func (s *Store) IsSnoozed(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.snoozes[id]
	if !ok {
		return false
	}

	if !alarm.IsExpired(until, s.clock.Now()) {
		return true
	}

	delete(s.snoozes, id)
	s.persist(ctx)

	return false
}

// IsSnoozedAt reports whether id is suppressed at now without touching state.
func (s *Store) IsSnoozedAt(id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.snoozes[id]

	return ok && !alarm.IsExpired(until, now)
}

// PurgeExpired deletes every snooze record that has lapsed at now and
// returns the removed records.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) alarm.Snoozes {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged alarm.Snoozes

	for id, until := range s.snoozes {
		if !alarm.IsExpired(until, now) {
			continue
		}

		if purged == nil {
			purged = make(alarm.Snoozes)
		}

		purged[id] = until
		delete(s.snoozes, id)
	}

	if len(purged) > 0 {
		s.persist(ctx)
		logger.DebugKV(ctx, "Expired snoozes purged", "count", len(purged))
	}

	return purged
}

// ClearSnooze deletes the snooze record for id, if any.
func (s *Store) ClearSnooze(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snoozes[id]; !ok {
		return
	}

	delete(s.snoozes, id)
	s.persist(ctx)
}

// SnoozedUntil returns the stored deadline for id, expired or not.
func (s *Store) SnoozedUntil(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snoozes.Until(id)
}

// Get returns the alarm with id.
func (s *Store) Get(id string) (alarm.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return alarm.Alarm{}, false
	}

	return s.alarms[index], true
}

// List returns a copy of all alarms sorted by time, then id.
func (s *Store) List() []alarm.Alarm {
	s.mu.Lock()
	result := append([]alarm.Alarm(nil), s.alarms...)
	s.mu.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Time != result[j].Time {
			return result[i].Time < result[j].Time
		}

		return result[i].ID < result[j].ID
	})

	return result
}

// Enabled returns a copy of the enabled alarms in insertion order.
func (s *Store) Enabled() []alarm.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]alarm.Alarm, 0, len(s.alarms))

	for _, a := range s.alarms {
		if a.Enabled {
			result = append(result, a)
		}
	}

	return result
}

// indexOf returns the position of id or -1. Callers hold mu.
func (s *Store) indexOf(id string) int {
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			return i
		}
	}

	return -1
}

// read decodes the document at key into target; a missing key leaves target untouched.
func (s *Store) read(ctx context.Context, key string, target any) error {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("load %s: %w", key, err)
	}

	if err = json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}

	return nil
}

// persist writes both documents. Callers hold mu, so writes follow the
// in-memory mutation in order. Failures are logged only.
func (s *Store) persist(ctx context.Context) {
	if s.kv == nil {
		return
	}

	if err := s.write(ctx, AlarmsKey, s.alarms); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms", "error", err)
	}

	if err := s.write(ctx, SnoozesKey, s.snoozes); err != nil {
		logger.ErrorKV(ctx, "Failed to persist snoozes", "error", err)
	}
}

// write encodes value as JSON under key.
func (s *Store) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return s.kv.Set(ctx, key, data)
}
