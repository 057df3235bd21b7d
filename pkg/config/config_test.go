package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pygr-project/pygr/pkg/observability"
)

func clearPygrEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PYGR_ROOT", "PYGR_SANDBOX", "PYGR_GITHUB_TOKEN",
		"PYGR_BINARY_CACHE_URL", "PYGR_BINARY_CACHE_S3_BUCKET", "PYGR_BINARY_CACHE_S3_REGION",
		"PYGR_BUILDCACHE_REDIS_ADDR", "PYGR_LOG_LEVEL",
		"PYGR_OTEL_ENABLED", "PYGR_OTEL_ENDPOINT", "PYGR_OTEL_SERVICE_NAME",
		"PYGR_OTEL_SERVICE_VERSION", "PYGR_OTEL_INSECURE",
	}
	for _, k := range keys {
		orig, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, orig)
			}
		})
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearPygrEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Sandbox)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.OTelEnabled)
	assert.Contains(t, cfg.Root, ".pygr")
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	clearPygrEnv(t)
	t.Setenv("PYGR_ROOT", "/tmp/pygr-test-root")
	t.Setenv("PYGR_SANDBOX", "false")
	t.Setenv("PYGR_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pygr-test-root", cfg.Root)
	assert.False(t, cfg.Sandbox)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
}

func TestValidateRejectsBothBinaryCacheBackends(t *testing.T) {
	cfg := &Config{
		Root:                "/tmp/x",
		BinaryCacheURL:      "http://example.com",
		BinaryCacheS3Bucket: "bucket",
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingOTelEndpoint(t *testing.T) {
	cfg := &Config{
		Root: "/tmp/x",
		Observability: ObservabilityConfig{
			OTelEnabled: true,
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestDerivedPathsAreRootedUnderRoot(t *testing.T) {
	cfg := &Config{Root: "/tmp/pygr-root"}

	assert.Equal(t, filepath.Join("/tmp/pygr-root", "store"), cfg.StoreDir())
	assert.Equal(t, filepath.Join("/tmp/pygr-root", "store", "sources"), cfg.SourceCacheDir())
	assert.Equal(t, filepath.Join("/tmp/pygr-root", "repos"), cfg.ReposDir())
	assert.Equal(t, filepath.Join("/tmp/pygr-root", "profiles"), cfg.ProfilesDir())
	assert.Equal(t, filepath.Join("/tmp/pygr-root", "config", "packages.conf"), cfg.ManifestPath())
	assert.Equal(t, filepath.Join("/tmp/pygr-root", "backups"), cfg.BackupsDir())
	assert.Equal(t, filepath.Join("/tmp/pygr-root", "pygr.db"), cfg.CatalogPath())
}

func TestParseLogLevelDefaultsToInfoOnUnknown(t *testing.T) {
	assert.Equal(t, observability.InfoLevel, parseLogLevel("nonsense"))
	assert.Equal(t, observability.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, observability.ErrorLevel, parseLogLevel("error"))
}
