package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestOTelMetricsRecordsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	defer otel.SetMeterProvider(prev)

	m, err := NewOTelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordTransaction(ctx, "install", "committed")
	m.RecordBuild(ctx, "curl", "success", 0)
	m.RecordCacheHit(ctx, "binary")
	m.RecordCacheMiss(ctx, "build")
	m.RecordFetch(ctx, "success")
	m.RecordResolverRun(ctx, 0)
	m.RecordGeneration(ctx)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics)

	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			names = append(names, metric.Name)
		}
	}
	assert.Contains(t, names, "pygr.transactions")
	assert.Contains(t, names, "pygr.profile.generations")
}
