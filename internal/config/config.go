// Package config loads binder's configuration from binder.toml, an optional
// environment overlay, and BINDER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/binder/pkg/database"
	"github.com/JaimeStill/binder/pkg/storage"
)

const (
	BaseConfigFile       = "binder.toml"
	OverlayConfigPattern = "binder.%s.toml"

	EnvBinderEnv             = "BINDER_ENV"
	EnvBinderShutdownTimeout = "BINDER_SHUTDOWN_TIMEOUT"
)

var databaseEnv = &database.Env{
	Host:            "BINDER_DB_HOST",
	Port:            "BINDER_DB_PORT",
	Name:            "BINDER_DB_NAME",
	User:            "BINDER_DB_USER",
	Password:        "BINDER_DB_PASSWORD",
	SSLMode:         "BINDER_DB_SSL_MODE",
	MaxOpenConns:    "BINDER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BINDER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BINDER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BINDER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:          "BINDER_STORAGE_BACKEND",
	ContainerName:    "BINDER_STORAGE_CONTAINER_NAME",
	ConnectionString: "BINDER_STORAGE_CONNECTION_STRING",
	AccountURL:       "BINDER_STORAGE_ACCOUNT_URL",
	Endpoint:         "BINDER_STORAGE_ENDPOINT",
	AccessKey:        "BINDER_STORAGE_ACCESS_KEY",
	SecretKey:        "BINDER_STORAGE_SECRET_KEY",
	Region:           "BINDER_STORAGE_REGION",
}

// Config is the root configuration for binder.
type Config struct {
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Merger          MergeConfig     `toml:"merge"`
	Logging         LoggingConfig   `toml:"logging"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
}

// Env returns the BINDER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBinderEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the config file at path, or binder.toml in the working
// directory when path is empty, applies the binder.<BINDER_ENV>.toml overlay
// found beside it, and finalizes all values. An explicit path must exist; a
// missing binder.toml leaves defaults and environment variables in charge.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads configuration like Load but finalizes only the
// [database] section, for commands that never touch storage.
func LoadDatabase(path string) (*database.Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize config: database: %w", err)
	}

	return &cfg.Database, nil
}

func read(path string) (*Config, error) {
	cfg := &Config{}

	base := path
	if base == "" {
		base = BaseConfigFile
	}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if path != "" {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if overlay := overlayPath(filepath.Dir(base)); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Merger.Merge(&overlay.Merger)
	c.Logging.Merge(&overlay.Logging)
}

// Finalize applies defaults, environment overrides, and validation to every
// section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Merger.Finalize(); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBinderShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvBinderEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
