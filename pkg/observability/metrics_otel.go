package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics mirrors the Prometheus collectors in Metrics as OTLP
// instruments, so deployments that ship metrics to a collector instead of
// scraping text exposition get the same signal through the OTel pipeline
// InitOTel sets up.
type OTelMetrics struct {
	transactionsTotal metric.Int64Counter
	buildsTotal       metric.Int64Counter
	cacheHitsTotal    metric.Int64Counter
	cacheMissesTotal  metric.Int64Counter
	fetchTotal        metric.Int64Counter
	resolverDuration  metric.Float64Histogram
	buildDuration     metric.Float64Histogram
	generationsTotal  metric.Int64Counter
}

// NewOTelMetrics creates the OTel instrument set against the global meter.
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/pygr-project/pygr")

	m := &OTelMetrics{}
	var err error

	m.transactionsTotal, err = meter.Int64Counter(
		"pygr.transactions",
		metric.WithDescription("Total number of install/uninstall/upgrade/apply transactions"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactions counter: %w", err)
	}

	m.buildsTotal, err = meter.Int64Counter(
		"pygr.builds",
		metric.WithDescription("Total number of recipe builds run"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create builds counter: %w", err)
	}

	m.cacheHitsTotal, err = meter.Int64Counter(
		"pygr.cache.hits",
		metric.WithDescription("Total number of binary-cache and build-cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}

	m.cacheMissesTotal, err = meter.Int64Counter(
		"pygr.cache.misses",
		metric.WithDescription("Total number of binary-cache and build-cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	m.fetchTotal, err = meter.Int64Counter(
		"pygr.fetch",
		metric.WithDescription("Total number of source fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch counter: %w", err)
	}

	m.resolverDuration, err = meter.Float64Histogram(
		"pygr.resolver.duration",
		metric.WithDescription("Time spent resolving a package graph"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver duration histogram: %w", err)
	}

	m.buildDuration, err = meter.Float64Histogram(
		"pygr.build.duration",
		metric.WithDescription("Time spent building a single recipe"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create build duration histogram: %w", err)
	}

	m.generationsTotal, err = meter.Int64Counter(
		"pygr.profile.generations",
		metric.WithDescription("Total number of profile generations committed"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generations counter: %w", err)
	}

	return m, nil
}

// RecordTransaction records a completed transaction of the given kind and status.
func (m *OTelMetrics) RecordTransaction(ctx context.Context, kind, status string) {
	m.transactionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

// RecordBuild records a single recipe build attempt and its wall time.
func (m *OTelMetrics) RecordBuild(ctx context.Context, recipe, status string, duration time.Duration) {
	m.buildsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.buildDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("recipe", recipe)))
}

// RecordCacheHit records a binary-cache or build-cache hit.
func (m *OTelMetrics) RecordCacheHit(ctx context.Context, cache string) {
	m.cacheHitsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cache)))
}

// RecordCacheMiss records a binary-cache or build-cache miss.
func (m *OTelMetrics) RecordCacheMiss(ctx context.Context, cache string) {
	m.cacheMissesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cache)))
}

// RecordFetch records a source fetch attempt.
func (m *OTelMetrics) RecordFetch(ctx context.Context, status string) {
	m.fetchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordResolverRun records the wall time of a single resolver pass.
func (m *OTelMetrics) RecordResolverRun(ctx context.Context, duration time.Duration) {
	m.resolverDuration.Record(ctx, duration.Seconds())
}

// RecordGeneration records a committed profile generation.
func (m *OTelMetrics) RecordGeneration(ctx context.Context) {
	m.generationsTotal.Add(ctx, 1)
}
