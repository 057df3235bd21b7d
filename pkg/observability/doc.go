// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes the ambient infrastructure shared by every pygr subcommand:
// JSON logging, metrics collection, dependency connectivity checks, distributed tracing,
// panic recovery, and interrupt-driven cleanup.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stderr)
//	logger.Info("resolved dependency graph")
//
// Context-aware logging:
//
//	logger.WithField("recipe", name).WithError(err).Error("build failed")
//
// # Prometheus Metrics
//
// Register and dump metrics (there is no HTTP /metrics endpoint; pygr is a
// single-shot CLI, so `pygr doctor` dumps the registry to stdout):
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.TransactionsTotal.WithLabelValues("install", "committed").Inc()
//	observability.Dump(registry, os.Stdout)
//
// # Connectivity Checks
//
// Configure a health checker and run it from `pygr doctor`:
//
//	checker := observability.NewHealthChecker(catalogDB, buildCacheClient, binaryCacheURL)
//	status := checker.Check(ctx)
//
// # OpenTelemetry
//
// Initialize tracing and metrics export:
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:        true,
//		ServiceName:    "pygr",
//		ServiceVersion: "0.1.0",
//		Endpoint:       "otel-collector:4317",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: process configuration, including the observability toggles above
package observability
