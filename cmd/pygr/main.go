// Command pygr is a per-user, source-building package manager: it
// resolves declarative recipes, fetches and builds source trees into a
// content-addressed store, and activates the result as a rollback-capable
// profile generation.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pygr-project/pygr/pkg/binarycache"
	"github.com/pygr-project/pygr/pkg/buildcache"
	"github.com/pygr-project/pygr/pkg/builder"
	"github.com/pygr-project/pygr/pkg/catalog"
	"github.com/pygr-project/pygr/pkg/cli"
	"github.com/pygr-project/pygr/pkg/config"
	"github.com/pygr-project/pygr/pkg/distro"
	"github.com/pygr-project/pygr/pkg/manifest"
	"github.com/pygr-project/pygr/pkg/observability"
	"github.com/pygr-project/pygr/pkg/profile"
	"github.com/pygr-project/pygr/pkg/recipeindex"
	"github.com/pygr-project/pygr/pkg/search"
	"github.com/pygr-project/pygr/pkg/source"
	"github.com/pygr-project/pygr/pkg/store"
	"github.com/pygr-project/pygr/pkg/transaction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pygr: configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)
	defer observability.RecoverPanic(logger, "pygr")

	ctx := context.Background()
	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to initialize OpenTelemetry, continuing without it")
	}
	if otelProviders != nil {
		defer func() {
			if err := observability.ShutdownOTel(ctx, otelProviders, logger); err != nil {
				logger.WithError(err).Warn("OpenTelemetry shutdown failed")
			}
		}()
	}

	for _, dir := range []string{cfg.StoreDir(), cfg.SourceCacheDir(), cfg.ReposDir(), cfg.ProfilesDir(), filepath.Dir(cfg.ManifestPath()), cfg.BackupsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.WithError(err).Errorf("failed to create %s", dir)
			os.Exit(1)
		}
	}

	cat, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		logger.WithError(err).Error("failed to open catalog")
		os.Exit(1)
	}
	defer cat.Close()

	st, err := store.New(cfg.StoreDir(), cat)
	if err != nil {
		logger.WithError(err).Error("failed to open store")
		os.Exit(1)
	}

	idx, err := recipeindex.New(512)
	if err != nil {
		logger.WithError(err).Error("failed to create recipe index")
		os.Exit(1)
	}
	if err := idx.Load([]string{cfg.ReposDir()}); err != nil {
		logger.WithError(err).Warn("failed to load recipe repositories")
	}

	fetcher := source.New(cfg.SourceCacheDir(), cfg.GitHubToken)
	bld := builder.New(ctx, cfg.Sandbox, logger)

	var bcClient binarycache.Client
	switch {
	case cfg.BinaryCacheURL != "":
		bcClient = binarycache.NewHTTPClient(cfg.BinaryCacheURL, logger)
	case cfg.BinaryCacheS3Bucket != "":
		s3Client, err := binarycache.NewS3Client(ctx, cfg.BinaryCacheS3Region, cfg.BinaryCacheS3Bucket, "", logger)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize S3 binary cache, continuing without one")
		} else {
			bcClient = s3Client
		}
	}

	var bldCache buildcache.Cache
	if cfg.BuildCacheRedisAddr != "" {
		bcfg := buildcache.DefaultConfig()
		bcfg.EnableL2 = true
		bcfg.L2Addr = cfg.BuildCacheRedisAddr
		built, err := buildcache.NewCache(ctx, bcfg)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize build cache, continuing without one")
		} else {
			bldCache = built
			defer built.Close()
		}
	}

	prof := profile.New("default", cfg.ProfilesDir(), cat)
	mf := manifest.New(cfg.ManifestPath())
	distroBridge := distro.New(logger)
	searcher := search.New(cfg.GitHubToken)

	health := observability.NewHealthChecker(cat.DB(), nil, cfg.BinaryCacheURL)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	var otelMetrics *observability.OTelMetrics
	if cfg.Observability.OTelEnabled {
		otelMetrics, err = observability.NewOTelMetrics()
		if err != nil {
			logger.WithError(err).Warn("failed to initialize OTel metrics instruments")
			otelMetrics = nil
		}
	}

	coord := transaction.New(
		idx,
		fetcher,
		st,
		bcClient,
		bld,
		bldCache,
		prof,
		mf,
		distroBridge,
		metrics,
		otelMetrics,
		logger,
	)

	app := &cli.App{
		Coordinator:     coord,
		Manifest:        mf,
		Profile:         prof,
		Searcher:        searcher,
		Distro:          distroBridge,
		Health:          health,
		Log:             logger,
		MetricsRegistry: registry,
	}

	root := cli.NewRootCommand(app)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pygr: %v\n", err)
		os.Exit(1)
	}
}
