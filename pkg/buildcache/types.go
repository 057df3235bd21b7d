package buildcache

import "time"

// Result is the cached outcome of a previous attempt to build the
// derivation at Fingerprint. A negative result (Success == false) lets
// the builder fail fast on a recipe known to be broken, instead of
// re-running the full build/install command sequence only to hit the
// same error again; a positive result is kept for Stats and `pygr
// doctor` introspection even though it carries no install-tree bytes.
type Result struct {
	Fingerprint string
	Name        string
	Version     string
	Success     bool
	Error       string // populated when Success is false
	Duration    time.Duration
	CachedAt    time.Time
}

// Stats reports cache effectiveness across both levels.
type Stats struct {
	Hits      int64
	Misses    int64
	HitRate   float64
	L1Hits    int64
	L2Hits    int64
	ItemCount int64
}

// Config holds build cache configuration. The zero Config disables both
// levels; use DefaultConfig for a sensible starting point.
type Config struct {
	// L1 (in-process memory) cache.
	EnableL1      bool
	L1MaxEntries  int           // default: 512
	L1TTL         time.Duration // default: 10 minutes

	// L2 (Redis) cache, shared across every user on a machine or team.
	EnableL2    bool
	L2Addr      string        // Redis address, e.g. "localhost:6379"
	L2Password  string
	L2DB        int
	L2TTL       time.Duration // default: 72 hours
	L2KeyPrefix string        // default: "pygr:build:"
}

// DefaultConfig returns an L1-only configuration; L2 additionally
// requires L2Addr before it can be enabled.
func DefaultConfig() Config {
	return Config{
		EnableL1:     true,
		L1MaxEntries: 512,
		L1TTL:        10 * time.Minute,

		L2TTL:       72 * time.Hour,
		L2KeyPrefix: "pygr:build:",
	}
}
