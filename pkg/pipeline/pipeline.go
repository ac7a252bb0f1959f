// Package pipeline provides the core topology pipeline for topolab.
//
// This package implements the complete fetch → normalize → export → layout
// flow that both the CLI commands and embedding callers use. By centralizing
// this logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Fetch: Retrieve the raw topology from a management platform or file
//  2. Normalize: Reconcile the raw records into the canonical graph
//  3. ExportLab: Emit the containerlab topology document
//  4. Layout: Compute deterministic node placement
//  5. ExportDiagram: Pair the placement with the link list
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Fetcher:     client,
//	    Orientation: "horizontal",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lab := result.Lab
//
// Run individual stages:
//
//	// Fetch only
//	raw, err := runner.Fetch(ctx, opts)
//
//	// Normalize an existing raw topology
//	g, stats, err := runner.Normalize(ctx, raw, opts)
//
//	// Layout an existing graph
//	l, err := runner.ComputeLayout(ctx, g, opts)
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topolab/pkg/cache"
	"github.com/matzehuels/topolab/pkg/clab"
	"github.com/matzehuels/topolab/pkg/diagram"
	"github.com/matzehuels/topolab/pkg/topo"
	"github.com/matzehuels/topolab/pkg/topo/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Embedding Callers
// =============================================================================

// Tier strategy names accepted by [Options.Strategy].
const (
	// StrategyDegree tiers connected nodes by connectivity: the highest
	// degree nodes form tier 0. This is the default.
	StrategyDegree = "degree"

	// StrategyDistance tiers connected nodes by hop distance from the
	// highest degree node.
	StrategyDistance = "distance"
)

// DefaultOrientation is the default layout orientation.
const DefaultOrientation = string(layout.Horizontal)

// ValidStrategies is the set of supported tier strategy names.
var ValidStrategies = map[string]bool{
	StrategyDegree:   true,
	StrategyDistance: true,
}

// Export format labels reported to observability hooks.
const (
	FormatLab    = "clab"
	FormatCoords = "coords"
)

// =============================================================================
// Fetcher - Topology Source Abstraction
// =============================================================================

// Fetcher retrieves a raw topology from a management platform. The second
// return value reports whether the topology came from a cache rather than a
// live fetch. The nsp package's Client satisfies this interface.
type Fetcher interface {
	// Server identifies the platform the fetcher talks to.
	Server() string

	// Network names the topology network being fetched.
	Network() string

	// FetchTopologyCached retrieves the raw topology. refresh bypasses any
	// cached copy and forces a live fetch.
	FetchTopologyCached(ctx context.Context, refresh bool) (*topo.RawTopology, bool, error)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the topology pipeline.
// This struct supports JSON serialization for embedding callers.
type Options struct {
	// Fetch options
	InputFile string `json:"input_file,omitempty"` // raw topology JSON file, alternative to Fetcher
	Refresh   bool   `json:"refresh,omitempty"`    // bypass the fetch cache

	// Export options
	LabName string `json:"lab_name,omitempty"` // lab name, omitted from the document when empty
	Kind    string `json:"kind,omitempty"`     // node kind for exported nodes
	Image   string `json:"image,omitempty"`    // node image for exported nodes

	// Layout options
	Orientation string         `json:"orientation,omitempty"` // horizontal or vertical
	Strategy    string         `json:"strategy,omitempty"`    // degree or distance
	TierHints   map[string]int `json:"tier_hints,omitempty"`  // explicit node to tier pins

	// Runtime options (not serialized)
	Fetcher Fetcher     `json:"-"`
	Logger  *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline run.
	RunID string

	// Raw is the topology as fetched, before normalization.
	Raw *topo.RawTopology

	// Graph is the canonical topology.
	Graph *topo.Graph

	// GraphHash is the content hash of the canonical graph.
	GraphHash string

	// Lab is the exported containerlab document.
	Lab *clab.Document

	// Layout is the computed node placement.
	Layout *layout.Layout

	// Diagram pairs the placement with the link list.
	Diagram *diagram.Document

	// Stats contains counters and timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics. The counters mirror the
// normalization stats; the durations cover the stages that do real work.
type Stats struct {
	Nodes      int
	Links      int
	LAGs       int
	Breakouts  int
	Duplicates int
	Isolated   int

	FetchTime     time.Duration
	NormalizeTime time.Duration
	LayoutTime    time.Duration
}

// CacheInfo tracks cache hits for each cacheable pipeline stage.
type CacheInfo struct {
	FetchHit  bool // whether the raw topology came from cache
	LayoutHit bool // whether the layout came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStrategy checks that a tier strategy name is valid.
func ValidateStrategy(strategy string) error {
	if !ValidStrategies[strategy] {
		return fmt.Errorf("invalid strategy: %q (must be one of: degree, distance)", strategy)
	}
	return nil
}

// ValidateOrientation checks that an orientation name is valid.
func ValidateOrientation(orientation string) error {
	_, err := layout.ParseOrientation(orientation)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetExportDefaults()
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for the fetch stage.
func (o *Options) ValidateForFetch() error {
	if o.Fetcher == nil && o.InputFile == "" {
		return fmt.Errorf("fetcher or input file is required")
	}
	if o.Fetcher != nil && o.InputFile != "" {
		return fmt.Errorf("fetcher and input file are mutually exclusive")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetExportDefaults sets default values for the lab export.
func (o *Options) SetExportDefaults() {
	if o.Kind == "" {
		o.Kind = clab.DefaultKind
	}
	if o.Image == "" {
		o.Image = clab.DefaultImage
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Orientation == "" {
		o.Orientation = DefaultOrientation
	}
	if o.Strategy == "" {
		o.Strategy = StrategyDegree
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateOrientation(o.Orientation); err != nil {
		return err
	}
	return ValidateStrategy(o.Strategy)
}

// TierStrategy returns the layout strategy selected by [Options.Strategy].
func (o *Options) TierStrategy() layout.TierStrategy {
	if o.Strategy == StrategyDistance {
		return layout.DistanceStrategy{}
	}
	return layout.DegreeStrategy{}
}

// LayoutOptions returns the layout configuration for the layout package.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Orientation: layout.Orientation(o.Orientation),
		Strategy:    o.TierStrategy(),
		TierHints:   o.TierHints,
	}
}

// ExportOptions returns the lab export configuration.
func (o *Options) ExportOptions() clab.ExportOptions {
	return clab.ExportOptions{
		Name:  o.LabName,
		Kind:  o.Kind,
		Image: o.Image,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Orientation: o.Orientation,
		Strategy:    o.Strategy,
		TierHints:   formatTierHints(o.TierHints),
	}
}

// formatTierHints flattens tier pins into a stable string so identical hint
// sets always produce identical cache keys.
func formatTierHints(hints map[string]int) string {
	if len(hints) == 0 {
		return ""
	}
	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, hints[k])
	}
	return strings.Join(parts, ",")
}
