// Package layout computes deterministic 2D coordinates for a canonical
// topology graph.
//
// # Overview
//
// Network diagrams read best when devices sit in tiers: hubs (spines, core
// routers) in one band, the devices hanging off them in the next. The
// layout engine reproduces that convention mechanically. It assigns every
// node a tier, orders the nodes within each tier to keep links short, and
// converts tier plus order into fixed-grid coordinates.
//
// The three stages:
//
//  1. Tier assignment. A [TierStrategy] maps nodes to tier indices.
//     [DegreeStrategy] is the default: nodes that are not dominated by a
//     better-connected neighbor become hubs at tier 0, everything else
//     lands at its hop distance from the nearest hub.
//  2. Within-tier ordering. Tier 0 keeps discovery order. Every later tier
//     sorts by the barycenter of each node's neighbors in the tier above:
//     nodes settle near the average position of what they connect to, which
//     keeps link lines short and mostly parallel. Nodes without neighbors
//     above sort after all anchored nodes. A bounded transpose pass then
//     swaps adjacent nodes where that strictly reduces link crossings.
//  3. Coordinate assignment. Tiers stack along the primary axis at
//     [TierGap] intervals; within a tier nodes spread along the secondary
//     axis at [NodeGap] intervals, centered against the widest tier. The
//     horizontal orientation stacks tiers top to bottom; vertical
//     transposes the axes.
//
// Isolated nodes never mix with connected ones: they are appended as one
// extra final tier.
//
// # Determinism
//
// Every stage breaks ties by first-seen node order and iterates slices, not
// maps. Two invocations over the same graph and options therefore produce
// byte-identical results. This is load-bearing: diagram files are diffed
// and cached by content hash.
//
// # Failure
//
// [Compute] fails with [LayoutError] in exactly two cases: the graph has no
// nodes, or the finished placement does not cover the graph's nodes exactly
// (an internal consistency guard). A failed layout never mutates the graph.
package layout
