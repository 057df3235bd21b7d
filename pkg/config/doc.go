// Package config loads pygr's per-user process configuration from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Environment variables
//
//	PYGR_ROOT="$HOME/.pygr"                 # root of store/, repos/, profiles/, config/, backups/, pygr.db
//	PYGR_SANDBOX="true"                     # request Docker isolation for builds
//	PYGR_GITHUB_TOKEN=""                    # optional token for private-repo source fetches
//	PYGR_BINARY_CACHE_URL=""                # HTTP binary cache base URL
//	PYGR_BINARY_CACHE_S3_BUCKET=""          # or an S3-backed binary cache (mutually exclusive)
//	PYGR_BUILDCACHE_REDIS_ADDR=""           # optional L2 build-result cache
//	PYGR_LOG_LEVEL="info"                   # debug, info, warn, error
//	PYGR_OTEL_ENABLED="false"
//	PYGR_OTEL_ENDPOINT="localhost:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(cfg.StoreDir())
//	fmt.Println(cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/observability: consumes the Observability settings above
package config
