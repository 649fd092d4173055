package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/puzzle"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds the settings shared by the alarm-clock commands.
type Config struct {
	// ListenAddress is the HTTP address the server binds and the CLI dials.
	ListenAddress string `yaml:"listen_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// TickInterval is the period of the clock loop.
	TickInterval time.Duration `yaml:"tick_interval"`
	// Snooze is how long a snoozed alarm stays silent.
	Snooze time.Duration `yaml:"snooze"`
	// DefaultDifficulty is the dot count for alarms without one.
	DefaultDifficulty int `yaml:"default_difficulty"`
	// Canvas is the puzzle drawing area.
	Canvas Canvas `yaml:"canvas"`
	// Storage selects where alarms and snoozes are persisted.
	Storage Storage `yaml:"storage"`
	// Audio configures tone playback.
	Audio Audio `yaml:"audio"`
	// Timeout bounds CLI requests to the server.
	Timeout time.Duration `yaml:"timeout"`
}

// Canvas is the puzzle drawing area in pixels.
type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Storage selects the key-value backend.
type Storage struct {
	// Backend is file, redis or sqlite.
	Backend string `yaml:"backend"`
	// Path is the directory (file) or database file (sqlite).
	Path string `yaml:"path"`
	// RedisAddress is host:port of the Redis server.
	RedisAddress string `yaml:"redis_addr"`
	// RedisPassword is optional.
	RedisPassword string `yaml:"redis_password"`
	// RedisDB is the Redis database index.
	RedisDB int `yaml:"redis_db"`
}

// Audio configures tone playback.
type Audio struct {
	// Enabled turns the audio device on; when off, alarms ring silently.
	Enabled bool `yaml:"enabled"`
	// SoundsDir is the directory the catalog paths are resolved against.
	SoundsDir string `yaml:"sounds_dir"`
	// SampleRate of the output device.
	SampleRate int `yaml:"sample_rate"`
	// Channels of the output device.
	Channels int `yaml:"channels"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultListenAddress is where the server listens when nothing is configured.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultDataPath is the default file-store directory.
	DefaultDataPath = "alarm-clock-data"

	// DefaultTimeout is the default duration for CLI requests.
	DefaultTimeout = 5 * time.Second

	// DefaultSnooze is the default snooze length.
	DefaultSnooze = 5 * time.Minute

	// DefaultSampleRate and DefaultChannels describe the audio device.
	DefaultSampleRate = 44100
	DefaultChannels   = 2

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
	// DefaultDirPermissions is the default permission for created directories.
	DefaultDirPermissions = 0o700
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned for an unsupported storage backend.
	errUnknownBackend = errors.New("unknown storage backend")
	// errRedisAddressRequired is returned when the redis backend has no address.
	errRedisAddressRequired = errors.New("redis address must be provided")
	// errCanvasTooSmall is returned when the canvas cannot hold a padded dot.
	errCanvasTooSmall = errors.New("canvas is too small for a single dot")
	// errInvalidAudio is returned for a non-positive sample rate or channel count.
	errInvalidAudio = errors.New("audio sample rate and channels must be positive")
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Audio: Audio{
			Enabled: true,
		},
	}

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := &Config{
		Audio: Audio{
			Enabled: true,
		},
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
// An explicitly requested file that is missing is still an error.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}

	if !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return nil, err
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the settings for consistency.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	if cfg.Snooze <= 0 {
		cfg.Snooze = DefaultSnooze
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.DefaultDifficulty == 0 {
		cfg.DefaultDifficulty = alarm.DefaultDifficulty
	}

	if err := alarm.ValidateDifficulty(cfg.DefaultDifficulty); err != nil {
		return fmt.Errorf("default difficulty: %w", err)
	}

	if cfg.Canvas.Width == 0 && cfg.Canvas.Height == 0 {
		cfg.Canvas = Canvas{Width: puzzle.DefaultWidth, Height: puzzle.DefaultHeight}
	}

	if cfg.Canvas.Width < 2*puzzle.Padding || cfg.Canvas.Height < 2*puzzle.Padding {
		return fmt.Errorf("%gx%g: %w", cfg.Canvas.Width, cfg.Canvas.Height, errCanvasTooSmall)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}

	if cfg.Audio.SoundsDir == "" {
		cfg.Audio.SoundsDir = "."
	}

	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = DefaultSampleRate
	}

	if cfg.Audio.Channels == 0 {
		cfg.Audio.Channels = DefaultChannels
	}

	if cfg.Audio.SampleRate < 0 || cfg.Audio.Channels < 0 {
		return errInvalidAudio
	}

	return nil
}

// validateStorage fills storage defaults and checks backend-specific fields.
func validateStorage(s *Storage) error {
	if s.Backend == "" {
		s.Backend = BackendFile
	}

	switch s.Backend {
	case BackendFile:
		if s.Path == "" {
			s.Path = DefaultDataPath
		}
	case BackendSQLite:
		if s.Path == "" {
			s.Path = DefaultDataPath + ".db"
		}
	case BackendRedis:
		if s.RedisAddress == "" {
			return errRedisAddressRequired
		}

		if _, _, err := net.SplitHostPort(s.RedisAddress); err != nil {
			return fmt.Errorf("invalid redis address: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", s.Backend, errUnknownBackend)
	}

	return nil
}
