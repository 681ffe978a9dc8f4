package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigFile is read when present. Every field also has an environment
// variable, so the file is optional.
const DefaultConfigFile = "config.yaml"

// Config holds all configuration for the dive-log server and the ingestion scripts.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	DiveAPI  DiveAPIConfig  `yaml:"dive_api"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Session  SessionConfig  `yaml:"session"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"divelog"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"social_scuba"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	// URL, when set, takes precedence over the discrete fields (DATABASE_URL).
	URL string `yaml:"-" env:"DATABASE_URL"`
}

// RedisConfig holds Redis configuration. Redis is only needed when the
// ingestion cache backend is "redis"; an empty host disables it.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// DiveAPIConfig describes the third-party dive site API.
type DiveAPIConfig struct {
	BaseURL    string        `yaml:"base_url" env:"DIVE_API_BASE_URL" env-default:"https://world-scuba-diving-sites-api.p.rapidapi.com"`
	Host       string        `yaml:"host" env:"DIVE_API_HOST" env-default:"world-scuba-diving-sites-api.p.rapidapi.com"`
	Key        string        `yaml:"-" env:"DIVE_API_KEY"` // Secret - not in YAML
	Timeout    time.Duration `yaml:"timeout" env:"DIVE_API_TIMEOUT" env-default:"30s"`
	MaxRetries int           `yaml:"max_retries" env:"DIVE_API_MAX_RETRIES" env-default:"2"`
}

// IngestConfig locates the files shared by the fetch and seed scripts.
// Relative file names are resolved against DataDir.
type IngestConfig struct {
	DataDir       string `yaml:"data_dir" env:"INGEST_DATA_DIR" env-default:"api-queries"`
	ReferenceFile string `yaml:"reference_file" env:"INGEST_REFERENCE_FILE" env-default:"sample_queries.txt"`
	PendingFile   string `yaml:"pending_file" env:"INGEST_PENDING_FILE" env-default:"query_requests_not_completed.txt"`
	CompletedFile string `yaml:"completed_file" env:"INGEST_COMPLETED_FILE" env-default:"query_requests_completed.txt"`
	LockFile      string `yaml:"lock_file" env:"INGEST_LOCK_FILE" env-default:"ledger.lock"`
	CacheDir      string `yaml:"cache_dir" env:"INGEST_CACHE_DIR" env-default:"by_country_or_region"`
	// CacheBackend selects where fetched responses are kept: "file" or "redis".
	CacheBackend string `yaml:"cache_backend" env:"INGEST_CACHE_BACKEND" env-default:"file"`
}

// SessionConfig configures the login cookie.
type SessionConfig struct {
	Secret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
	MaxAge int    `yaml:"max_age" env:"SESSION_MAX_AGE" env-default:"604800"`
	Secure bool   `yaml:"secure" env:"SESSION_SECURE" env-default:"false"`
}

// Load reads configuration for the HTTP server. config.yaml is optional;
// environment variables override YAML values.
func Load(version string) (*Config, error) {
	cfg, err := read(DefaultConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.Version = version

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must be set")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// LoadIngest reads configuration for the ingestion scripts. It skips the
// server-only validation done by Load.
func LoadIngest() (*Config, error) {
	cfg, err := read(DefaultConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Ingest.validate(); err != nil {
		return nil, fmt.Errorf("invalid ingest configuration: %w", err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return cfg, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

func (c *IngestConfig) validate() error {
	switch c.CacheBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q (want file or redis)", c.CacheBackend)
	}
	return nil
}

// Path resolves name against DataDir unless it is already absolute.
func (c *IngestConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		ResolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns host:port for the Redis client.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", ResolveHostForDocker(c.Host), c.Port)
}
