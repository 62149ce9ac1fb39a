// Package config loads TuneStream configuration from TOML files and the
// environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

// Environment variables that override file values.
const (
	EnvJamendoClientID = "JAMENDO_CLIENT_ID"
	EnvDatabase        = "TUNESTREAM_DB"
)

// Catalog providers.
const (
	ProviderJamendo = "jamendo"
	ProviderLocal   = "local"
	ProviderNone    = "none"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the complete application configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Playback PlaybackConfig `koanf:"playback"`
	Storage  StorageConfig  `koanf:"storage"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `koanf:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" default:"text" validate:"oneof=text json"`
}

// CatalogConfig selects and configures the catalog source.
type CatalogConfig struct {
	Provider string        `koanf:"provider" default:"jamendo" validate:"oneof=jamendo local none"`
	Jamendo  JamendoConfig `koanf:"jamendo"`
	Local    LocalConfig   `koanf:"local"`
}

// JamendoConfig configures the Jamendo API client.
type JamendoConfig struct {
	BaseURL  string        `koanf:"base_url" default:"https://api.jamendo.com/v3.0" validate:"url"`
	ClientID string        `koanf:"client_id"`
	Timeout  time.Duration `koanf:"timeout" default:"10s" validate:"gt=0"`
}

// LocalConfig configures the local folder catalog.
type LocalConfig struct {
	Root string `koanf:"root"`
}

// PlaybackConfig tunes the media binding and the virtual element.
type PlaybackConfig struct {
	ErrorRetryDelay  time.Duration `koanf:"error_retry_delay" default:"1s" validate:"gt=0"`
	ProgressInterval time.Duration `koanf:"progress_interval" default:"250ms" validate:"gt=0"`
}

// StorageConfig selects where collections and preferences are kept.
type StorageConfig struct {
	Backend string `koanf:"backend" default:"sqlite" validate:"oneof=sqlite memory"`
	// Path is the SQLite database file; empty means the XDG data directory.
	Path string `koanf:"path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	// defaults.Set only fails on malformed tags.
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// SearchPaths lists the config files read by Load, lowest priority first.
func SearchPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, "tunestream", "config.toml"),
		"config.toml",
	}
}

// Load reads the configuration. When path is empty every existing file in
// SearchPaths is merged (last wins); otherwise only path is read and it must
// exist. Environment variables are applied last.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	paths := SearchPaths()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, errors.Wrapf(err, "config file %s", path)
		}
		paths = []string{path}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "failed to parse %s", p)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to set defaults")
	}

	cfg.Catalog.Local.Root = expandPath(cfg.Catalog.Local.Root)
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Catalog.Jamendo.BaseURL = strings.TrimSuffix(cfg.Catalog.Jamendo.BaseURL, "/")
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overrideFromEnv() {
	if v := os.Getenv(EnvJamendoClientID); v != "" {
		c.Catalog.Jamendo.ClientID = v
	}
	if v := os.Getenv(logger.EnvLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Storage.Path = v
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	if c.Catalog.Provider == ProviderLocal && c.Catalog.Local.Root == "" {
		return errors.New("config validation failed: catalog.local.root is required for the local provider")
	}
	return nil
}

// LoggerConfig converts the log section for logger.NewLogger.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  logger.ParseLevel(c.Log.Level, slog.LevelInfo),
		Format: c.Log.Format,
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
