package cli

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pygr-project/pygr/pkg/observability"
)

func TestRunDoctorWithNoHealthCheckerConfigured(t *testing.T) {
	app := testApp(t, nil)
	err := newDoctorCommand(app).Run(nil)
	assert.NoError(t, err)
}

func TestRunDoctorReportsHealthStatus(t *testing.T) {
	app := testApp(t, nil)
	app.Health = observability.NewHealthChecker(nil, nil, "")

	err := newDoctorCommand(app).Run(nil)
	assert.NoError(t, err)
}

func TestRunDoctorDumpsMetricsWhenRegistryConfigured(t *testing.T) {
	app := testApp(t, nil)
	app.Health = observability.NewHealthChecker(nil, nil, "")
	registry := prometheus.NewRegistry()
	_ = observability.NewMetrics(registry)
	app.MetricsRegistry = registry

	err := newDoctorCommand(app).Run(nil)
	require.NoError(t, err)
}
