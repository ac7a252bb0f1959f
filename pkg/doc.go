// Package pkg provides the core libraries for Topolab network topology
// conversion.
//
// # Overview
//
// Topolab turns the Layer 2 topology of a Nokia NSP into containerlab labs
// and deterministic diagram layouts. The pkg directory is organized into
// four main areas:
//
//  1. [topo] - Domain logic (canonical graph, normalization, serialization)
//  2. [nsp] - The NSP client (auth, fetch, caching)
//  3. [clab], [diagram], [dot] - Export formats
//  4. [pipeline] - Orchestration (fetch → normalize → export → layout)
//
// # Architecture
//
// The typical data flow through Topolab:
//
//	NSP topology export
//	         ↓
//	    [nsp] package (fetch raw links and inventory)
//	         ↓
//	    [topo] package (normalize into the canonical graph)
//	         ↓
//	    [clab] package (containerlab file)  /  [topo/layout] package (tiers)
//	         ↓
//	    YAML / coordinate JSON / DOT / SVG output
//
// # Quick Start
//
// Fetch a topology and run the full pipeline:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/topolab/pkg/nsp"
//	    "github.com/matzehuels/topolab/pkg/pipeline"
//	)
//
//	// 1. Connect to the NSP
//	client, _ := nsp.New(nsp.Config{
//	    Server:   "nsp.example.com",
//	    Username: "admin",
//	    Password: secret,
//	})
//
//	// 2. Run fetch → normalize → export → layout
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Fetcher: client,
//	})
//
//	// 3. Use the outputs
//	_ = result.Lab     // containerlab document
//	_ = result.Diagram // node coordinates
//
// # Main Packages
//
// ## Domain Logic
//
// [topo] - The canonical topology graph: nodes joined by undirected links
// between logical endpoints (ports or LAGs). Normalize reconciles a raw
// vendor export into the graph: duplicate link reports are dropped, LAG
// members collapse into group endpoints, breakout channels record their
// parent connector, and isolated nodes are kept and flagged.
//
// [topo/layout] - Deterministic tiered 2D layout. Tier assignment is
// pluggable (degree or distance strategies), nodes are ordered within tiers
// by barycenter sweeps to reduce crossings, and positions land on a fixed
// grid. The same graph always yields identical coordinates.
//
// ## Fetching
//
// [nsp] - HTTP client for the NSP's topology API: token login and
// revocation, proxy and TLS options, retrying transport, and cached
// fetches keyed by server and network.
//
// [httputil] - Shared HTTP plumbing for the NSP client: retrying
// round-tripper and response decoding helpers.
//
// ## Export Formats
//
// [clab] - Containerlab topology documents: export from the canonical
// graph, import back, and YAML file round-tripping.
//
// [diagram] - Coordinate documents pairing every node with its tier and
// grid position, serialized as JSON.
//
// [dot] - Graphviz DOT export and in-process SVG rendering.
//
// ## Infrastructure
//
// [pipeline] - Complete conversion pipeline (fetch → normalize → export →
// layout) used by the CLI and embedding callers. Ensures consistent
// behavior across all entry points.
//
// [cache] - Content-addressed cache for fetched topologies and computed
// layouts. FileCache for the CLI, RedisCache for shared deployments,
// NullCache for tests.
//
// [archive] - Topology snapshots for reproducible offline runs. FileStore
// on disk, MongoStore for shared archives.
//
// [profile] - Named NSP connection profiles in a TOML file. Profiles never
// store passwords.
//
// [observability] - Pipeline stage hooks for metrics and tracing without
// wiring a specific backend into the domain packages.
//
// [errors] - Typed topology and layout errors shared across packages.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/topo/...         # Specific package
//	go test -run Example           # Examples only
//
// [topo]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/topo
// [topo/layout]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/topo/layout
// [nsp]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/nsp
// [httputil]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/httputil
// [clab]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/clab
// [diagram]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/diagram
// [dot]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/cache
// [archive]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/archive
// [profile]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/profile
// [observability]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/topolab/pkg/buildinfo
package pkg
