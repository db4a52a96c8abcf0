package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitnetwork/pkg/cache"
	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/observability"
	"github.com/matzehuels/gitnetwork/pkg/store"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its backends - it doesn't store
// pipeline results itself. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // optional; required for Options.Save
	Logger *log.Logger

	// TTL overrides the cache lifetime of layouts and artifacts.
	TTL time.Duration
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1+2: Fetch and layout
	l, err := r.layoutWithStats(ctx, opts, result)
	if err != nil {
		return nil, err
	}
	result.Layout = l

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	if opts.Save {
		id, err := r.save(ctx, &result.Layout)
		if err != nil {
			return nil, err
		}
		result.RunID = id
	}
	return result, nil
}

// Layout runs fetch and layout only.
func (r *Runner) Layout(ctx context.Context, opts Options) (graph.Layout, CacheInfo, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFetch(); err != nil {
		return graph.Layout{}, CacheInfo{}, fmt.Errorf("invalid options: %w", err)
	}

	var result Result
	l, err := r.layoutWithStats(ctx, opts, &result)
	return l, result.CacheInfo, err
}

func (r *Runner) layoutWithStats(ctx context.Context, opts Options, result *Result) (graph.Layout, error) {
	src, err := OpenSource(opts)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("fetch: %w", err)
	}

	hooks := observability.Pipeline()
	fetchStart := time.Now()
	hooks.OnFetchStart(ctx, src.Name(), opts.Ref)

	snap, err := Resolve(ctx, src, opts)
	if err != nil {
		hooks.OnFetchComplete(ctx, src.Name(), 0, time.Since(fetchStart), err)
		return graph.Layout{}, fmt.Errorf("fetch: %w", err)
	}

	key := r.Keyer.LayoutKey(snap.Identity(), opts.LayoutKeyOpts(snap.Head, snap.Target))
	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, key); ok {
			result.Stats.FetchTime = time.Since(fetchStart)
			hooks.OnFetchComplete(ctx, src.Name(), 0, result.Stats.FetchTime, nil)
			result.CacheInfo.LayoutHit = true
			r.recordLayout(result, l)
			r.Logger.Info("loaded cached layout", "commits", l.Len(), "lanes", l.Width)
			return l, nil
		}
	}

	window, err := FetchWindow(ctx, snap, opts)
	result.Stats.FetchTime = time.Since(fetchStart)
	hooks.OnFetchComplete(ctx, src.Name(), len(window), result.Stats.FetchTime, err)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("fetch: %w", err)
	}
	r.Logger.Debug("fetched history",
		"source", src.Name(),
		"commits", len(window),
		"refs", len(snap.Refs),
		"duration", result.Stats.FetchTime)

	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, len(window))
	l, err := GenerateLayout(window, snap, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, l.Width, result.Stats.LayoutTime, err)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("layout: %w", err)
	}
	r.recordLayout(result, l)

	r.Logger.Info("computed layout",
		"commits", l.Len(),
		"lanes", l.Width,
		"duration", result.Stats.LayoutTime)

	r.storeLayout(ctx, key, l)
	return l, nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (graph.Layout, bool) {
	var l graph.Layout
	hit, err := cache.GetJSON(ctx, r.Cache, key, &l)
	if err == nil && hit {
		err = l.Validate()
	}
	if err != nil || !hit {
		// Undecodable or invalid entries are recomputed and overwritten.
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		return graph.Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeLayout)
	return l, true
}

func (r *Runner) storeLayout(ctx context.Context, key string, l graph.Layout) {
	if err := cache.SetJSON(ctx, r.Cache, key, l, r.ttl(cache.TTLLayout)); err != nil {
		r.Logger.Warn("cache layout", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeLayout, l.Len())
}

func (r *Runner) recordLayout(result *Result, l graph.Layout) {
	result.Stats.Commits = l.Len()
	result.Stats.Lanes = l.Width
	result.Stats.Chains = l.Stats.Chains
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Artifacts are keyed by the layout content, so cached and freshly
	// computed layouts share entries.
	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		allCached = false

		data, err := RenderFormat(ctx, l, format, opts)
		if err != nil {
			err = fmt.Errorf("render %s: %w", format, err)
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

func (r *Runner) save(ctx context.Context, l *graph.Layout) (string, error) {
	if r.Store == nil {
		return "", fmt.Errorf("save: no store configured")
	}
	id, err := r.Store.Save(ctx, l)
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	r.Logger.Info("saved layout", "run_id", id)
	return id, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set. It
// runs before validation, which would otherwise install a discard logger.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
