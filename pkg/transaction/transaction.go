// Package transaction coordinates a full install, uninstall, or upgrade:
// resolver selection, source fetch, cache-or-build, store placement,
// profile generation commit, and manifest update. A Coordinator is a
// short-lived collaborator — it owns nothing between calls.
package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pygr-project/pygr/pkg/binarycache"
	"github.com/pygr-project/pygr/pkg/buildcache"
	"github.com/pygr-project/pygr/pkg/observability"
	"github.com/pygr-project/pygr/pkg/profile"
	"github.com/pygr-project/pygr/pkg/recipe"
	"github.com/pygr-project/pygr/pkg/resolver"
	"github.com/pygr-project/pygr/pkg/store"
)

// ManifestStore is the subset of the declarative manifest a transaction
// needs: adding a root-level install spec and removing every entry for a
// given display name.
type ManifestStore interface {
	AddEntry(spec string) error
	// RemoveByName removes the first entry whose display name matches
	// name, returning the removed spec text and whether anything was
	// removed.
	RemoveByName(name string) (spec string, removed bool, err error)
}

// DistroRemover uninstalls a host-native package through the matching
// distro package manager. It is opaque to the core: pm and name come
// straight from a "distro:<pm>:<name>" manifest entry.
type DistroRemover interface {
	Remove(ctx context.Context, pm, name string) error
}

// Fetcher materializes a recipe's source tree and returns its content
// hash. *source.Fetcher satisfies this.
type Fetcher interface {
	Fetch(ctx context.Context, repo, ref string) (sourceDir, treeHash string, err error)
}

// Builder turns a fetched source tree into an installable tree.
// *builder.Builder satisfies this.
type Builder interface {
	Build(ctx context.Context, r *recipe.Recipe, sourceDir string, depStorePaths map[string]string) (string, error)
}

// Coordinator runs install/uninstall/upgrade transactions against one
// profile.
type Coordinator struct {
	lookup   resolver.RecipeLookup
	resolve  *resolver.Resolver
	fetcher  Fetcher
	st       *store.Store
	cache    binarycache.Client // nil disables the binary cache
	bld      Builder
	bldCache buildcache.Cache // nil disables the negative build-result cache
	prof     *profile.Profile
	manifest ManifestStore
	distro   DistroRemover // nil if no distro entries are ever uninstalled
	metrics  *observability.Metrics
	otel     *observability.OTelMetrics
	log      *observability.Logger
}

// New builds a Coordinator. cache, bldCache, distro, metrics, and otel may
// be nil.
func New(
	lookup resolver.RecipeLookup,
	fetcher Fetcher,
	st *store.Store,
	cache binarycache.Client,
	bld Builder,
	bldCache buildcache.Cache,
	prof *profile.Profile,
	manifest ManifestStore,
	distro DistroRemover,
	metrics *observability.Metrics,
	otel *observability.OTelMetrics,
	log *observability.Logger,
) *Coordinator {
	return &Coordinator{
		lookup:   lookup,
		resolve:  resolver.New(lookup),
		fetcher:  fetcher,
		st:       st,
		cache:    cache,
		bld:      bld,
		bldCache: bldCache,
		prof:     prof,
		manifest: manifest,
		distro:   distro,
		metrics:  metrics,
		otel:     otel,
		log:      log,
	}
}

// processed is the transaction-local record of a recipe already fetched,
// built or reused, and placed in the store during this transaction.
type processed struct {
	recipe      *recipe.Recipe
	fingerprint string
	path        string
}

// Install resolves every spec, fetches and builds (or reuses) each
// selected recipe in dependency order, commits a new profile generation
// over the union of the current and newly-built fingerprints, and
// appends a manifest entry for each root spec.
func (c *Coordinator) Install(ctx context.Context, specs []string) (err error) {
	start := time.Now()
	defer func() { c.recordTransaction(ctx, "install", err) }()

	rootNames := make([]string, 0, len(specs))
	accumulated := make([]*recipe.Recipe, 0)
	seen := make(map[string]bool)

	for _, spec := range specs {
		name, constraint, perr := recipe.ParseSpec(spec)
		if perr != nil {
			return perr
		}
		rootNames = append(rootNames, name)

		resolveStart := time.Now()
		ordered, rerr := c.resolve.Resolve(name, constraint)
		c.recordResolverRun(ctx, time.Since(resolveStart))
		if rerr != nil {
			return rerr
		}
		for _, r := range ordered {
			if seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			accumulated = append(accumulated, r)
		}
	}

	processedByName := make(map[string]processed, len(accumulated))
	for _, r := range accumulated {
		p, berr := c.fetchAndPlace(ctx, r, processedByName)
		if berr != nil {
			return berr
		}
		processedByName[r.Name] = p
	}

	_, currentFPs, gerr := c.prof.CurrentGeneration()
	if gerr != nil {
		return gerr
	}

	union := make(map[string]bool, len(currentFPs)+len(processedByName))
	for _, fp := range currentFPs {
		union[fp] = true
	}
	for _, p := range processedByName {
		union[p.fingerprint] = true
	}
	fingerprints := make([]string, 0, len(union))
	for fp := range union {
		fingerprints = append(fingerprints, fp)
	}

	if _, err = c.prof.AddGeneration(fingerprints); err != nil {
		return err
	}
	c.recordGeneration(ctx)

	for _, name := range rootNames {
		p, ok := processedByName[name]
		if !ok {
			continue
		}
		entry := fmt.Sprintf("recipe:%s@%s", p.recipe.Name, p.recipe.Version)
		if err = c.manifest.AddEntry(entry); err != nil {
			return err
		}
	}

	if c.log != nil {
		c.log.WithField("duration", time.Since(start).String()).Infof("install completed for %v", rootNames)
	}
	return nil
}

// fetchAndPlace fetches r's source, computes its derivation fingerprint
// against the already-processed dependencies in this transaction, and
// places it in the store: reusing an existing artifact, falling back to
// the binary cache, and finally the sandboxed builder.
func (c *Coordinator) fetchAndPlace(ctx context.Context, r *recipe.Recipe, processedByName map[string]processed) (processed, error) {
	depFingerprints := make([]string, 0, len(r.Dependencies))
	depStorePaths := make(map[string]string, len(r.Dependencies))
	for _, dep := range r.Dependencies {
		if p, ok := processedByName[dep.Name]; ok {
			depFingerprints = append(depFingerprints, p.fingerprint)
			depStorePaths[dep.Name] = p.path
		}
	}

	sourceDir, sourceHash, err := c.fetcher.Fetch(ctx, r.Source.Repo, r.Source.Ref)
	c.recordFetch(ctx, err)
	if err != nil {
		return processed{}, err
	}

	fp, err := store.Fingerprint(r, sourceHash, depFingerprints)
	if err != nil {
		return processed{}, err
	}

	if existing, err := c.st.PathFor(fp); err != nil {
		return processed{}, err
	} else if existing != "" {
		return processed{recipe: r, fingerprint: fp, path: existing}, nil
	}

	if c.cache != nil {
		dest := c.st.DerivationPath(fp, r.Name, r.Version)
		hit, err := c.cache.Fetch(ctx, fp, dest)
		if err != nil {
			return processed{}, err
		}
		if hit {
			c.recordCache(ctx, "binary", true)
			if err := c.st.RecordExisting(fp, r.Name, r.Version, dest); err != nil {
				return processed{}, err
			}
			return processed{recipe: r, fingerprint: fp, path: dest}, nil
		}
		c.recordCache(ctx, "binary", false)
	}

	if c.bldCache != nil {
		if prior, err := c.bldCache.Get(ctx, fp); err == nil && !prior.Success {
			return processed{}, fmt.Errorf("%w: %s previously failed to build: %s", ErrKnownBuildFailure, r.Name, prior.Error)
		}
	}

	buildStart := time.Now()
	installRoot, buildErr := c.bld.Build(ctx, r, sourceDir, depStorePaths)
	buildDuration := time.Since(buildStart)
	c.recordBuild(ctx, r.Name, buildDuration, buildErr)
	c.recordBuildOutcome(ctx, r, fp, buildDuration, buildErr)
	if buildErr != nil {
		return processed{}, buildErr
	}

	path, err := c.st.Add(r, sourceHash, depFingerprints, installRoot)
	if err != nil {
		return processed{}, err
	}
	return processed{recipe: r, fingerprint: fp, path: path}, nil
}

// recordBuildOutcome records buildErr's pass/fail outcome in the build
// cache, if one is configured. A failure here never overrides buildErr —
// the cache is an optimization, not a dependency.
func (c *Coordinator) recordBuildOutcome(ctx context.Context, r *recipe.Recipe, fingerprint string, d time.Duration, buildErr error) {
	if c.bldCache == nil {
		return
	}
	result := buildcache.Result{
		Fingerprint: fingerprint,
		Name:        r.Name,
		Version:     r.Version,
		Success:     buildErr == nil,
		Duration:    d,
	}
	if buildErr != nil {
		result.Error = buildErr.Error()
	}
	if err := c.bldCache.Set(ctx, result, 0); err != nil && c.log != nil {
		c.log.WithError(err).Warn("buildcache: failed to record build outcome")
	}
}

// Uninstall removes every artifact whose name is in names from the
// current generation (committing a new one only if the set changed),
// removes the matching manifest entries, and invokes the distro remover
// for any removed distro: entries.
func (c *Coordinator) Uninstall(ctx context.Context, names []string) (err error) {
	defer func() { c.recordTransaction(ctx, "uninstall", err) }()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	_, currentFPs, gerr := c.prof.CurrentGeneration()
	if gerr != nil {
		return gerr
	}

	keep := make([]string, 0, len(currentFPs))
	changed := false
	for _, fp := range currentFPs {
		artifact, aerr := c.lookupArtifactName(fp)
		if aerr != nil {
			return aerr
		}
		if wanted[artifact] {
			changed = true
			continue
		}
		keep = append(keep, fp)
	}

	if changed {
		if _, err = c.prof.AddGeneration(keep); err != nil {
			return err
		}
		c.recordGeneration(ctx)
	}

	for name := range wanted {
		spec, removed, rerr := c.manifest.RemoveByName(name)
		if rerr != nil {
			return rerr
		}
		if !removed {
			continue
		}
		// The profile generation change above already committed; a failed
		// distro removal is an independent fact about the system and does
		// not roll it back, so this is logged rather than returned.
		if pm, pkgName, ok := parseDistroSpec(spec); ok && c.distro != nil {
			if derr := c.distro.Remove(ctx, pm, pkgName); derr != nil && c.log != nil {
				c.log.WithError(derr).Warnf("distro remove failed for %s:%s", pm, pkgName)
			}
		}
	}

	if !changed {
		return ErrNoChange
	}
	return nil
}

// Upgrade re-resolves names at their current highest versions
// (equivalent to Install). With no names, every distinct artifact name in
// the current generation is upgraded.
func (c *Coordinator) Upgrade(ctx context.Context, names []string) error {
	if len(names) > 0 {
		return c.Install(ctx, names)
	}

	_, currentFPs, err := c.prof.CurrentGeneration()
	if err != nil {
		return err
	}

	distinct := make(map[string]bool)
	var specs []string
	for _, fp := range currentFPs {
		name, aerr := c.lookupArtifactName(fp)
		if aerr != nil {
			return aerr
		}
		if !distinct[name] {
			distinct[name] = true
			specs = append(specs, name)
		}
	}
	return c.Install(ctx, specs)
}

// CurrentArtifactNames returns the distinct display names of every
// artifact in the profile's current generation, for driving a manifest
// Plan diff from `pygr apply`.
func (c *Coordinator) CurrentArtifactNames(ctx context.Context) ([]string, error) {
	_, fps, err := c.prof.CurrentGeneration()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fps))
	seen := make(map[string]bool, len(fps))
	for _, fp := range fps {
		name, err := c.lookupArtifactName(fp)
		if err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func (c *Coordinator) lookupArtifactName(fingerprint string) (string, error) {
	a, err := c.st.Artifact(fingerprint)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", fmt.Errorf("transaction: fingerprint %s not found in catalog", fingerprint)
	}
	return a.Name, nil
}

func parseDistroSpec(spec string) (pm, name string, ok bool) {
	if !strings.HasPrefix(spec, "distro:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(spec, "distro:")
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (c *Coordinator) recordTransaction(ctx context.Context, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.TransactionsTotal.WithLabelValues(kind, status).Inc()
	}
	if c.otel != nil {
		c.otel.RecordTransaction(ctx, kind, status)
	}
}

func (c *Coordinator) recordResolverRun(ctx context.Context, d time.Duration) {
	if c.metrics != nil {
		c.metrics.ResolverDuration.Observe(d.Seconds())
	}
	if c.otel != nil {
		c.otel.RecordResolverRun(ctx, d)
	}
}

func (c *Coordinator) recordBuild(ctx context.Context, recipeName string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.BuildsTotal.WithLabelValues(status).Inc()
		c.metrics.BuildDuration.WithLabelValues(recipeName).Observe(d.Seconds())
	}
	if c.otel != nil {
		c.otel.RecordBuild(ctx, recipeName, status, d)
	}
}

func (c *Coordinator) recordCache(ctx context.Context, cache string, hit bool) {
	if c.metrics == nil && c.otel == nil {
		return
	}
	if hit {
		if c.metrics != nil {
			c.metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
		}
		if c.otel != nil {
			c.otel.RecordCacheHit(ctx, cache)
		}
		return
	}
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
	if c.otel != nil {
		c.otel.RecordCacheMiss(ctx, cache)
	}
}

func (c *Coordinator) recordFetch(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.FetchTotal.WithLabelValues(status).Inc()
	}
	if c.otel != nil {
		c.otel.RecordFetch(ctx, status)
	}
}

func (c *Coordinator) recordGeneration(ctx context.Context) {
	if c.metrics != nil {
		c.metrics.GenerationsTotal.Inc()
	}
	if c.otel != nil {
		c.otel.RecordGeneration(ctx)
	}
}
