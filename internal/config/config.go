package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverSurreal  = "surreal"
)

// Config holds all generator configuration
type Config struct {
	Store   StoreConfig
	Log     LogConfig
	Export  ExportConfig
	Metrics MetricsConfig

	// Seed fixes the fake data source. Zero picks a random seed.
	Seed uint64
	// Timeout bounds one generator run.
	Timeout time.Duration
}

// StoreConfig selects where persisted entities go
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Surreal     SurrealConfig
}

// SurrealConfig holds SurrealDB connection settings
type SurrealConfig struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

// LogConfig holds slog settings
type LogConfig struct {
	Level  string
	Format string
}

// ExportConfig holds output settings
type ExportConfig struct {
	Format string
	S3     S3Config
}

// S3Config holds the S3 client settings used for s3:// outputs
type S3Config struct {
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// MetricsConfig holds Prometheus Pushgateway settings
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	seed, err := getUint64Env("FACTORY_SEED", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Store: StoreConfig{
			Driver:      getEnv("FACTORY_STORE_DRIVER", DriverMemory),
			SQLitePath:  getEnv("FACTORY_SQLITE_PATH", "fixtures.db"),
			PostgresDSN: getEnv("FACTORY_POSTGRES_DSN", ""),
			Surreal: SurrealConfig{
				Host:      getEnv("FACTORY_SURREAL_HOST", "localhost"),
				Port:      getEnv("FACTORY_SURREAL_PORT", "8000"),
				User:      getEnv("FACTORY_SURREAL_USER", "root"),
				Password:  getEnv("FACTORY_SURREAL_PASSWORD", "root"),
				Namespace: getEnv("FACTORY_SURREAL_NAMESPACE", "fixtures"),
				Database:  getEnv("FACTORY_SURREAL_DATABASE", "main"),
			},
		},
		Log: LogConfig{
			Level:  getEnv("FACTORY_LOG_LEVEL", "info"),
			Format: getEnv("FACTORY_LOG_FORMAT", "json"),
		},
		Export: ExportConfig{
			Format: getEnv("FACTORY_EXPORT_FORMAT", "json"),
			S3: S3Config{
				Region:    getEnv("FACTORY_S3_REGION", "us-east-1"),
				Endpoint:  getEnv("FACTORY_S3_ENDPOINT", ""),
				PathStyle: getBoolEnv("FACTORY_S3_PATH_STYLE", false),
				// Empty keys fall back to the default AWS credential chain.
				AccessKeyID:     getEnv("FACTORY_S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("FACTORY_S3_SECRET_ACCESS_KEY", ""),
			},
		},
		Metrics: MetricsConfig{
			PushgatewayURL: getEnv("FACTORY_PUSHGATEWAY_URL", ""),
			Job:            getEnv("FACTORY_METRICS_JOB", "fixturegen"),
		},
		Seed:    seed,
		Timeout: getDurationEnv("FACTORY_OP_TIMEOUT", 30*time.Second),
	}, nil
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("FACTORY_SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("FACTORY_POSTGRES_DSN is required for the postgres driver"))
		}
	case DriverSurreal:
		if err := c.Store.Surreal.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("SurrealDB: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("FACTORY_STORE_DRIVER must be 'memory', 'sqlite', 'postgres', or 'surreal', got '%s'", c.Store.Driver))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("FACTORY_LOG_FORMAT must be 'json' or 'text', got '%s'", c.Log.Format))
	}

	if c.Export.Format != "json" && c.Export.Format != "yaml" {
		errs = append(errs, fmt.Errorf("FACTORY_EXPORT_FORMAT must be 'json' or 'yaml', got '%s'", c.Export.Format))
	}

	if (c.Export.S3.AccessKeyID == "") != (c.Export.S3.SecretAccessKey == "") {
		errs = append(errs, errors.New("FACTORY_S3_ACCESS_KEY_ID and FACTORY_S3_SECRET_ACCESS_KEY must be set together"))
	}

	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		errs = append(errs, errors.New("FACTORY_METRICS_JOB is required when FACTORY_PUSHGATEWAY_URL is set"))
	}

	if c.Timeout <= 0 {
		errs = append(errs, errors.New("FACTORY_OP_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Persistent reports whether the configured driver writes outside the process.
func (c *Config) Persistent() bool {
	return c.Store.Driver != DriverMemory
}

// Validate checks that all required SurrealDB fields are present
func (s SurrealConfig) Validate() error {
	var missing []string
	if s.Host == "" {
		missing = append(missing, "FACTORY_SURREAL_HOST")
	}
	if s.Port == "" {
		missing = append(missing, "FACTORY_SURREAL_PORT")
	}
	if s.Namespace == "" {
		missing = append(missing, "FACTORY_SURREAL_NAMESPACE")
	}
	if s.Database == "" {
		missing = append(missing, "FACTORY_SURREAL_DATABASE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("FACTORY_LOG_LEVEL must be 'debug', 'info', 'warn', or 'error', got '%s'", l.Level)
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getUint64Env(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned integer: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
