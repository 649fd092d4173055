package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/alarm-clock/internal/config"
)

// Store persists opaque values under string keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("key not found")
	// errInvalidKey is returned for keys that cannot be stored safely.
	errInvalidKey = errors.New("invalid key")
	// errUnsupportedBackend is returned for an unknown backend name.
	errUnsupportedBackend = errors.New("unsupported backend")
)

// Open creates the Store selected by settings.
//
//nolint:ireturn // Callers depend on the Store abstraction, the backend is a setting.
func Open(ctx context.Context, settings config.Storage) (Store, error) {
	switch settings.Backend {
	case config.BackendFile, "":
		store, err := NewFileStore(settings.Path)
		if err != nil {
			return nil, err
		}

		return store, nil
	case config.BackendSQLite:
		store, err := OpenSQLiteStore(ctx, settings.Path)
		if err != nil {
			return nil, err
		}

		return store, nil
	case config.BackendRedis:
		store, err := OpenRedisStore(ctx, settings.RedisAddress, settings.RedisPassword, settings.RedisDB)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("open %q store: %w", settings.Backend, errUnsupportedBackend)
	}
}
