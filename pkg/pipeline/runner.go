package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/topolab/pkg/cache"
	"github.com/matzehuels/topolab/pkg/clab"
	"github.com/matzehuels/topolab/pkg/diagram"
	"github.com/matzehuels/topolab/pkg/observability"
	"github.com/matzehuels/topolab/pkg/topo"
	"github.com/matzehuels/topolab/pkg/topo/layout"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and embedding callers can use this to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Logger: logger,
	}
}

// Execute runs the complete fetch → normalize → export → layout pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: Fetch
	fetchStart := time.Now()
	raw, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Raw = raw
	result.Stats.FetchTime = time.Since(fetchStart)
	result.CacheInfo.FetchHit = fetchHit

	logger.Info("fetched topology",
		"source", raw.Source,
		"links", len(raw.Links),
		"cached", fetchHit,
		"duration", result.Stats.FetchTime)

	// Stage 2: Normalize
	normalizeStart := time.Now()
	g, stats, err := r.Normalize(ctx, raw, opts)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	result.Graph = g
	result.Stats.NormalizeTime = time.Since(normalizeStart)
	result.Stats.Nodes = stats.Nodes
	result.Stats.Links = stats.Links
	result.Stats.LAGs = stats.LAGs
	result.Stats.Breakouts = stats.Breakouts
	result.Stats.Duplicates = stats.Duplicates
	result.Stats.Isolated = stats.Isolated

	// Compute graph hash for cache keys and change detection
	if data, err := topo.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	logger.Info("normalized topology",
		"nodes", stats.Nodes,
		"links", stats.Links,
		"duplicates", stats.Duplicates,
		"duration", result.Stats.NormalizeTime)

	// Stage 3: Export lab
	result.Lab = r.ExportLab(ctx, g, opts)

	// Stage 4: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"tiers", l.TierCount(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 5: Export diagram
	doc, err := r.ExportDiagram(ctx, g, l)
	if err != nil {
		return nil, fmt.Errorf("diagram: %w", err)
	}
	result.Diagram = doc

	return result, nil
}

// FetchWithCacheInfo retrieves the raw topology and returns cache hit info.
// When opts.InputFile is set, the topology is read from disk and never
// counts as a cache hit.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (*topo.RawTopology, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}

	if opts.InputFile != "" {
		observability.Pipeline().OnFetchStart(ctx, opts.InputFile, "")
		start := time.Now()
		raw, err := topo.ReadRawFile(opts.InputFile)
		if err != nil {
			observability.Pipeline().OnFetchComplete(ctx, opts.InputFile, "", 0, time.Since(start), err)
			return nil, false, err
		}
		if raw.Source == "" {
			raw.Source = opts.InputFile
		}
		observability.Pipeline().OnFetchComplete(ctx, opts.InputFile, raw.Network, len(raw.Links), time.Since(start), nil)
		return raw, false, nil
	}

	server, network := opts.Fetcher.Server(), opts.Fetcher.Network()
	observability.Pipeline().OnFetchStart(ctx, server, network)
	start := time.Now()
	raw, hit, err := opts.Fetcher.FetchTopologyCached(ctx, opts.Refresh)
	if err != nil {
		observability.Pipeline().OnFetchComplete(ctx, server, network, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Pipeline().OnFetchComplete(ctx, server, network, len(raw.Links), time.Since(start), nil)
	return raw, hit, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*topo.RawTopology, error) {
	raw, _, err := r.FetchWithCacheInfo(ctx, opts)
	return raw, err
}

// Normalize reconciles a raw topology into the canonical graph.
func (r *Runner) Normalize(ctx context.Context, raw *topo.RawTopology, opts Options) (*topo.Graph, *topo.Stats, error) {
	r.applyLogger(&opts)

	observability.Pipeline().OnNormalizeStart(ctx, len(raw.Links))
	start := time.Now()
	g, stats, err := topo.Normalize(raw, topo.NormalizeOptions{Logger: opts.Logger})
	if err != nil {
		observability.Pipeline().OnNormalizeComplete(ctx, 0, 0, time.Since(start), err)
		return nil, nil, err
	}
	observability.Pipeline().OnNormalizeComplete(ctx, g.NodeCount(), g.LinkCount(), time.Since(start), nil)
	return g, stats, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache
// hit info. Layouts are keyed on the graph content hash plus the layout
// options, so a cached entry can only be hit by the same graph again.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *topo.Graph, opts Options) (*layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	observability.Pipeline().OnLayoutStart(ctx, opts.Orientation, g.NodeCount())
	start := time.Now()

	var cacheKey string
	if data, err := topo.MarshalGraph(g); err == nil {
		cacheKey = r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())
	}

	if cacheKey != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Layout
			if err := json.Unmarshal(data, &cached); err == nil && cached.Covers(g) == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				observability.Pipeline().OnLayoutComplete(ctx, opts.Orientation, time.Since(start), nil)
				return &cached, true, nil
			}
			// Undecodable or stale entries fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	l, err := layout.Compute(g, opts.LayoutOptions())
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, opts.Orientation, time.Since(start), err)
		return nil, false, err
	}

	if cacheKey != "" {
		if data, err := json.Marshal(l); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}

	observability.Pipeline().OnLayoutComplete(ctx, opts.Orientation, time.Since(start), nil)
	return l, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *topo.Graph, opts Options) (*layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// ExportLab converts the canonical graph to a containerlab document.
func (r *Runner) ExportLab(ctx context.Context, g *topo.Graph, opts Options) *clab.Document {
	r.applyLogger(&opts)
	opts.SetExportDefaults()

	formats := []string{FormatLab}
	observability.Pipeline().OnExportStart(ctx, formats)
	start := time.Now()
	doc := clab.Export(g, opts.ExportOptions())
	observability.Pipeline().OnExportComplete(ctx, formats, time.Since(start), nil)
	return doc
}

// ExportDiagram pairs a computed layout with the graph's link list.
// Fails when the layout does not cover the graph exactly.
func (r *Runner) ExportDiagram(ctx context.Context, g *topo.Graph, l *layout.Layout) (*diagram.Document, error) {
	formats := []string{FormatCoords}
	observability.Pipeline().OnExportStart(ctx, formats)
	start := time.Now()
	doc, err := diagram.Build(g, l)
	observability.Pipeline().OnExportComplete(ctx, formats, time.Since(start), err)
	return doc, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
