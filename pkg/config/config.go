package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pygr-project/pygr/pkg/observability"
)

// Config holds every environment-driven setting pygr reads at startup.
type Config struct {
	// Root is the user-configurable root directory under which store/,
	// repos/, profiles/, config/, backups/, and pygr.db all live.
	Root string

	// Sandbox requests Docker isolation for builds when available.
	Sandbox bool

	GitHubToken string

	BinaryCacheURL      string
	BinaryCacheS3Bucket string
	BinaryCacheS3Region string

	BuildCacheRedisAddr string

	Observability ObservabilityConfig
}

// ObservabilityConfig holds logging and tracing settings.
type ObservabilityConfig struct {
	LogLevel           observability.LogLevel
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// Load reads configuration from the environment, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg := &Config{
		Root:                getEnv("PYGR_ROOT", filepath.Join(home, ".pygr")),
		Sandbox:             getEnvBool("PYGR_SANDBOX", true),
		GitHubToken:         getEnv("PYGR_GITHUB_TOKEN", ""),
		BinaryCacheURL:      getEnv("PYGR_BINARY_CACHE_URL", ""),
		BinaryCacheS3Bucket: getEnv("PYGR_BINARY_CACHE_S3_BUCKET", ""),
		BinaryCacheS3Region: getEnv("PYGR_BINARY_CACHE_S3_REGION", "us-east-1"),
		BuildCacheRedisAddr: getEnv("PYGR_BUILDCACHE_REDIS_ADDR", ""),
		Observability: ObservabilityConfig{
			LogLevel:           parseLogLevel(getEnv("PYGR_LOG_LEVEL", "info")),
			OTelEnabled:        getEnvBool("PYGR_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("PYGR_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("PYGR_OTEL_SERVICE_NAME", "pygr"),
			OTelServiceVersion: getEnv("PYGR_OTEL_SERVICE_VERSION", "0.1.0"),
			OTelInsecure:       getEnvBool("PYGR_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the loaded configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root directory is required")
	}
	if c.BinaryCacheURL != "" && c.BinaryCacheS3Bucket != "" {
		return fmt.Errorf("binary cache cannot be both HTTP and S3 backed at once")
	}
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}
	return nil
}

// StoreDir returns the content-addressed store root.
func (c *Config) StoreDir() string { return filepath.Join(c.Root, "store") }

// SourceCacheDir returns the fetched-source cache root.
func (c *Config) SourceCacheDir() string { return filepath.Join(c.Root, "store", "sources") }

// ReposDir returns the cloned-recipe-repository root.
func (c *Config) ReposDir() string { return filepath.Join(c.Root, "repos") }

// ProfilesDir returns the profile root.
func (c *Config) ProfilesDir() string { return filepath.Join(c.Root, "profiles") }

// ManifestPath returns the declarative manifest file path.
func (c *Config) ManifestPath() string { return filepath.Join(c.Root, "config", "packages.conf") }

// BackupsDir returns the config backup root.
func (c *Config) BackupsDir() string { return filepath.Join(c.Root, "backups") }

// CatalogPath returns the Catalog's SQLite database file path.
func (c *Config) CatalogPath() string { return filepath.Join(c.Root, "pygr.db") }

func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}
