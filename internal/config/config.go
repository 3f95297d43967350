package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AllowedOrigins lists browser origins permitted to call the API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig selects the store. Path is used by sqlite, the
// connection fields by postgres.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type SessionConfig struct {
	DefaultWeight    string `yaml:"default_weight"`
	DefaultReps      string `yaml:"default_reps"`
	HistoryLimit     int    `yaml:"history_limit"`
	MatchByRoutineID bool   `yaml:"match_by_routine_id"`
}

type CatalogConfig struct {
	CacheMB int  `yaml:"cache_mb"`
	Seed    bool `yaml:"seed"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used for any field the file leaves out.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8420},
		Database: DatabaseConfig{Driver: "sqlite", Path: "liftlog.db"},
		Session: SessionConfig{
			DefaultWeight: "0",
			DefaultReps:   "10",
			HistoryLimit:  20,
		},
		Catalog: CatalogConfig{CacheMB: 4, Seed: true},
		Log:     LogConfig{Level: "info"},
	}
}

// DSN returns the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
	}
	return d.Path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// MigrateURL returns the URL golang-migrate uses for the same database.
func (d DatabaseConfig) MigrateURL() string {
	if d.Driver == "postgres" {
		return d.DSN()
	}
	return "sqlite://" + d.Path
}

// LogLevel parses log.level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. Env vars use the prefix LIFTLOG_ and
// underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT,
//	LIFTLOG_DB_DRIVER, LIFTLOG_DB_PATH,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_SESSION_MATCH_BY_ROUTINE_ID, LIFTLOG_CATALOG_SEED,
//	LIFTLOG_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("LIFTLOG_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LIFTLOG_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LIFTLOG_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTLOG_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTLOG_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTLOG_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTLOG_SESSION_MATCH_BY_ROUTINE_ID"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Session.MatchByRoutineID = b
		}
	}
	if v := os.Getenv("LIFTLOG_CATALOG_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Catalog.Seed = b
		}
	}
	if v := os.Getenv("LIFTLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Session.HistoryLimit < 0 {
		return fmt.Errorf("session.history_limit must not be negative")
	}
	if c.Catalog.CacheMB < 0 {
		return fmt.Errorf("catalog.cache_mb must not be negative")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level %q is not a valid level", c.Log.Level)
	}
	return nil
}
