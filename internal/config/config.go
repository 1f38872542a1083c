// Package config loads the server configuration.
//
// Values come from three layers, later layers winning: built-in
// defaults, an optional YAML file (named by --config or BLOG_CONFIG),
// and environment variables. Command-line flags are applied on top by
// the caller.
//
// There is no default signing secret. Validate fails until JWT_SECRET
// (or auth.jwt_secret in the file) is set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageInMemory = "in-memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

// Config is the full server configuration.
type Config struct {
	Port    int           `yaml:"port"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`

	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects and configures the post backend.
type StorageConfig struct {
	// Kind is one of in-memory, mongo or postgres.
	Kind string `yaml:"kind"`

	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	// PostgresDSN is a libpq connection string or URL.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// AuthConfig configures token signing.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port: 8080,
		Storage: StorageConfig{
			Kind:          StorageInMemory,
			MongoDatabase: "blog",
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults, the file at path (if path
// is non-empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = port
	}
	setString(&c.Storage.Kind, "STORAGE")
	setString(&c.Storage.MongoURI, "MONGO_URI")
	setString(&c.Storage.MongoDatabase, "MONGO_DATABASE")
	setString(&c.Storage.PostgresDSN, "DATABASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	if err := setDuration(&c.Auth.TokenTTL, "TOKEN_TTL"); err != nil {
		return err
	}
	return setDuration(&c.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate reports configuration that the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token ttl must be positive, got %s", c.Auth.TokenTTL))
	}

	switch c.Storage.Kind {
	case StorageInMemory:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for mongo storage"))
		}
		if c.Storage.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required for mongo storage"))
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q (want %s, %s or %s)",
			c.Storage.Kind, StorageInMemory, StorageMongo, StoragePostgres))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level the way slog does, so "WARN" and "info+2" are
// accepted.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}
