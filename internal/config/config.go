package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults for everything the config file or environment may override.
const (
	DefaultSyncTimeout     = 20 * time.Second
	DefaultResolveTimeout  = 15 * time.Second
	DefaultMaxParallel     = 4
	DefaultMaxEntryAgeDays = 5
)

// Config holds runtime settings for the app. Values resolve in layers:
// built-in defaults, then the TOML config file, then TIDINGS_* environment
// variables. Command-line flags in main override all three.
type Config struct {
	DBPath          string
	LogPath         string
	SyncTimeout     time.Duration
	ResolveTimeout  time.Duration
	MaxParallel     int
	MaxEntryAgeDays int
}

// MaxEntryAge converts the configured day count to a duration; zero
// disables startup expiry.
func (c Config) MaxEntryAge() time.Duration {
	if c.MaxEntryAgeDays <= 0 {
		return 0
	}
	return time.Duration(c.MaxEntryAgeDays) * 24 * time.Hour
}

// fileConfig is the TOML shape. Durations are plain seconds so the file
// stays free of unit strings; pointers distinguish "absent" from an
// explicit zero, which for max_entry_age_days means "keep everything".
type fileConfig struct {
	DBPath                string `toml:"db_path"`
	LogPath               string `toml:"log_path"`
	SyncTimeoutSeconds    *int   `toml:"sync_timeout_seconds"`
	ResolveTimeoutSeconds *int   `toml:"resolve_timeout_seconds"`
	MaxParallel           *int   `toml:"max_parallel"`
	MaxEntryAgeDays       *int   `toml:"max_entry_age_days"`
}

// DataDir is where the database, log, and config file live by default.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "tidings"), nil
}

// Load resolves the configuration. A non-empty path names the config file
// explicitly and must exist; with an empty path the default location is
// tried and a missing file is fine.
func Load(path string) (Config, error) {
	dir, err := DataDir()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		DBPath:          filepath.Join(dir, "tidings.db"),
		LogPath:         filepath.Join(dir, "tidings.log"),
		SyncTimeout:     DefaultSyncTimeout,
		ResolveTimeout:  DefaultResolveTimeout,
		MaxParallel:     DefaultMaxParallel,
		MaxEntryAgeDays: DefaultMaxEntryAgeDays,
	}

	required := path != ""
	if path == "" {
		path = filepath.Join(dir, "config.toml")
	}
	if err := applyFile(&cfg, path, required); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.LogPath != "" {
		cfg.LogPath = fc.LogPath
	}
	if fc.SyncTimeoutSeconds != nil {
		cfg.SyncTimeout = time.Duration(*fc.SyncTimeoutSeconds) * time.Second
	}
	if fc.ResolveTimeoutSeconds != nil {
		cfg.ResolveTimeout = time.Duration(*fc.ResolveTimeoutSeconds) * time.Second
	}
	if fc.MaxParallel != nil {
		cfg.MaxParallel = *fc.MaxParallel
	}
	if fc.MaxEntryAgeDays != nil {
		cfg.MaxEntryAgeDays = *fc.MaxEntryAgeDays
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TIDINGS_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TIDINGS_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if err := envSeconds("TIDINGS_SYNC_TIMEOUT_SECONDS", &cfg.SyncTimeout); err != nil {
		return err
	}
	if err := envSeconds("TIDINGS_RESOLVE_TIMEOUT_SECONDS", &cfg.ResolveTimeout); err != nil {
		return err
	}
	if err := envInt("TIDINGS_MAX_PARALLEL", &cfg.MaxParallel); err != nil {
		return err
	}
	if err := envInt("TIDINGS_MAX_ENTRY_AGE_DAYS", &cfg.MaxEntryAgeDays); err != nil {
		return err
	}
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %q", name, v)
	}
	*dst = n
	return nil
}

func envSeconds(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %q", name, v)
	}
	*dst = time.Duration(n) * time.Second
	return nil
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("SyncTimeout must be positive: %s", c.SyncTimeout)
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("ResolveTimeout must be positive: %s", c.ResolveTimeout)
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("MaxParallel must be at least 1: %d", c.MaxParallel)
	}
	if c.MaxEntryAgeDays < 0 {
		return fmt.Errorf("MaxEntryAgeDays must not be negative: %d", c.MaxEntryAgeDays)
	}
	return nil
}
