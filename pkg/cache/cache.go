// Package cache provides caching for fetched topologies and computed layouts.
//
// The [Cache] interface abstracts over storage backends so the pipeline can
// run identically with a local file cache, a shared Redis instance, or no
// cache at all:
//   - [FileCache]: file-based storage for CLI usage (~/.cache/topolab/)
//   - [RedisCache]: Redis-backed storage for shared environments
//   - [NullCache]: no-op cache for tests or --no-cache runs
//
// Keys are produced by a [Keyer] so that every component derives keys the
// same way. All keys embed a content hash of their inputs, which makes cached
// entries self-invalidating when inputs change.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for cache backends.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs for the different cached artifact classes.
const (
	// TTLFetch bounds how long a fetched raw topology is reused. Live
	// networks drift, so this is deliberately short.
	TTLFetch = 5 * time.Minute

	// TTLLayout is the lifetime of a computed layout. Layouts are keyed on
	// the graph content hash, so stale entries can only be hit by the same
	// graph again.
	TTLLayout = 24 * time.Hour

	// TTLHTTP is the default lifetime for raw HTTP response caching.
	TTLHTTP = time.Hour
)

// FetchKeyOpts captures the inputs that make a topology fetch distinct.
type FetchKeyOpts struct {
	Server  string `json:"server"`
	Network string `json:"network"`
}

// LayoutKeyOpts captures the inputs that make a layout computation distinct.
type LayoutKeyOpts struct {
	Orientation string `json:"orientation"`
	Strategy    string `json:"strategy"`
	TierHints   string `json:"tier_hints,omitempty"`
}

// Keyer generates cache keys for the different artifact classes.
// Implementations must be deterministic: identical inputs always produce
// identical keys.
type Keyer interface {
	// HTTPKey generates a key for raw HTTP response caching.
	HTTPKey(namespace, key string) string

	// FetchKey generates a key for a fetched raw topology.
	FetchKey(opts FetchKeyOpts) string

	// LayoutKey generates a key for a computed layout, scoped by the
	// content hash of the graph it was computed from.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// Format: "http:namespace:key" (kept readable for debugging).
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// FetchKey generates a key for a fetched raw topology.
func (k *DefaultKeyer) FetchKey(opts FetchKeyOpts) string {
	return hashKey("fetch", opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
