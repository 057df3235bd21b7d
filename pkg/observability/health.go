package observability

import (
	"context"
	"database/sql"
	"net/http"
	"os/exec"
	"time"

	"github.com/go-redis/redis/v8"
)

// dockerDaemonReachable shells out to `docker info`. The builder uses a
// different probe (a Docker API client ping) when it chooses between the
// sandboxed and direct runner.
func dockerDaemonReachable(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "docker", "info")
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		if _, ok := err.(*exec.Error); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HealthChecker probes every optional external collaborator pygr can be
// configured with and reports whether each is reachable. It backs the
// `pygr doctor` subcommand; there is no HTTP liveness/readiness surface
// since this is a single-shot CLI tool, not a server.
type HealthChecker struct {
	db          *sql.DB
	buildCache  *redis.Client
	binaryCache string
	httpClient  *http.Client
}

// NewHealthChecker builds a HealthChecker. buildCache and binaryCacheURL
// may be nil/empty when the corresponding feature is disabled.
func NewHealthChecker(db *sql.DB, buildCache *redis.Client, binaryCacheURL string) *HealthChecker {
	return &HealthChecker{
		db:          db,
		buildCache:  buildCache,
		binaryCache: binaryCacheURL,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DependencyStatus is the outcome of probing a single collaborator.
type DependencyStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Latency time.Duration `json:"latency_ms,omitempty"`
}

// HealthStatus is the aggregate result of a Check.
type HealthStatus struct {
	Status       string             `json:"status"`
	Timestamp    time.Time          `json:"timestamp"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// Check probes every configured collaborator and aggregates the result.
// The catalog is required; docker, the build cache, and the binary cache
// are optional and degrade the overall status rather than failing it.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	if h.db != nil {
		dep := h.checkCatalog(ctx)
		status.Dependencies = append(status.Dependencies, dep)
		if dep.Status == StatusUnhealthy {
			status.Status = StatusUnhealthy
		}
	}

	dockerDep := h.checkDocker(ctx)
	status.Dependencies = append(status.Dependencies, dockerDep)
	if dockerDep.Status == StatusUnhealthy && status.Status == StatusHealthy {
		status.Status = StatusDegraded
	}

	if h.buildCache != nil {
		dep := h.checkBuildCache(ctx)
		status.Dependencies = append(status.Dependencies, dep)
		if dep.Status == StatusUnhealthy && status.Status == StatusHealthy {
			status.Status = StatusDegraded
		}
	}

	if h.binaryCache != "" {
		dep := h.checkBinaryCache(ctx)
		status.Dependencies = append(status.Dependencies, dep)
		if dep.Status == StatusUnhealthy && status.Status == StatusHealthy {
			status.Status = StatusDegraded
		}
	}

	return status
}

func (h *HealthChecker) checkCatalog(ctx context.Context) DependencyStatus {
	start := time.Now()
	dep := DependencyStatus{Name: "catalog", Status: StatusHealthy}

	if err := h.db.PingContext(ctx); err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = err.Error()
		dep.Latency = time.Since(start)
		return dep
	}

	var one int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = "query failed: " + err.Error()
	}
	dep.Latency = time.Since(start)
	return dep
}

// checkDocker probes the Docker daemon the same way the builder does
// before deciding whether sandboxed builds are available.
func (h *HealthChecker) checkDocker(ctx context.Context) DependencyStatus {
	start := time.Now()
	dep := DependencyStatus{Name: "docker", Status: StatusHealthy}

	available, err := dockerDaemonReachable(ctx)
	dep.Latency = time.Since(start)
	if err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = err.Error()
		return dep
	}
	if !available {
		dep.Status = StatusUnhealthy
		dep.Message = "docker daemon not reachable, builds will run unsandboxed"
	}
	return dep
}

func (h *HealthChecker) checkBuildCache(ctx context.Context) DependencyStatus {
	start := time.Now()
	dep := DependencyStatus{Name: "build-cache", Status: StatusHealthy}

	if err := h.buildCache.Ping(ctx).Err(); err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = err.Error()
	}
	dep.Latency = time.Since(start)
	return dep
}

func (h *HealthChecker) checkBinaryCache(ctx context.Context) DependencyStatus {
	start := time.Now()
	dep := DependencyStatus{Name: "binary-cache", Status: StatusHealthy}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.binaryCache, nil)
	if err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = err.Error()
		dep.Latency = time.Since(start)
		return dep
	}

	resp, err := h.httpClient.Do(req)
	dep.Latency = time.Since(start)
	if err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = err.Error()
		return dep
	}
	defer resp.Body.Close()
	return dep
}
