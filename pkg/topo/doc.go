// Package topo models network topologies in two forms: the raw export a
// management platform hands out, and the canonical graph everything
// downstream consumes.
//
// # Overview
//
// Vendor topology exports are noisy. Every adjacency is reported twice (once
// per direction), aggregated links appear as their individual member ports,
// and breakout connectors show up as channels with no visible relation to
// each other. [RawTopology] preserves that shape faithfully; [Normalize]
// reduces it to a [Graph] in which each adjacency is a single undirected
// [Link] between two logical endpoints.
//
// # Endpoint Resolution
//
// A logical [Endpoint] is either a physical port or a LAG. Resolution per
// raw port reference:
//
//   - Port belongs to a LAG: the endpoint is the group, named after the LAG.
//     All member ports resolve to the same endpoint, so the per-member link
//     reports collapse into one logical link.
//   - Port is a breakout channel: the endpoint keeps the channel name and
//     records the parent connector in [Endpoint.BreakoutParent] for
//     diagnostics.
//   - Anything else: the endpoint is the port itself.
//
// # Duplicates and Errors
//
// Duplicate adjacency reports are expected and harmless: the first report
// wins and later ones are counted and logged at debug level. Records that
// contradict the inventory are not recoverable - unknown devices, unknown
// ports, and links from a device to itself fail normalization with a
// [MalformedTopologyError].
//
// # Determinism
//
// The graph preserves insertion order for nodes and links. Normalizing the
// same raw export twice yields graphs that iterate identically, which keeps
// lab exports and layout coordinates byte-for-byte reproducible.
//
// # Related Packages
//
// The [layout] subpackage computes 2D coordinates for a canonical graph.
// Package clab exports a graph as a containerlab topology file, and package
// nsp fetches raw topologies from a Nokia NSP server.
//
// [layout]: github.com/matzehuels/topolab/pkg/topo/layout
package topo
