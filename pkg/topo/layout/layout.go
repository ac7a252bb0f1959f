package layout

import (
	"fmt"
	"sort"

	"github.com/matzehuels/topolab/pkg/topo"
)

// Spacing constants for the fixed placement grid. NodeGap is the minimum
// distance between nodes of the same tier along the spread axis; TierGap
// separates consecutive tiers along the stacking axis. Both are sized for
// the default diagram icon so adjacent icons never overlap.
const (
	NodeGap = 150.0
	TierGap = 200.0
)

// Orientation selects the axis mapping of the placement grid.
type Orientation string

const (
	// Horizontal stacks tiers top to bottom and spreads nodes left to
	// right within a tier. This is the default.
	Horizontal Orientation = "horizontal"
	// Vertical stacks tiers left to right and spreads nodes top to bottom
	// within a tier.
	Vertical Orientation = "vertical"
)

// ParseOrientation converts a flag value to an [Orientation]. The empty
// string maps to Horizontal.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "horizontal", "":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	default:
		return "", fmt.Errorf("unknown orientation %q (want horizontal or vertical)", s)
	}
}

// LayoutError reports a failed layout attempt: an empty graph, or a
// finished placement that does not cover the graph exactly. The graph
// itself stays valid; only the layout step is aborted.
type LayoutError struct {
	Reason string
}

// Error returns the failure reason.
func (e *LayoutError) Error() string { return "layout: " + e.Reason }

// Position is one node's placement on the canvas.
type Position struct {
	Node string  `json:"node" bson:"node"`
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
	Tier int     `json:"tier" bson:"tier"`
}

// Layout is the complete placement for a graph. Positions are ordered by
// tier, then by position within the tier, so serializing a Layout is
// deterministic.
type Layout struct {
	Orientation Orientation `json:"orientation" bson:"orientation"`
	Positions   []Position  `json:"positions" bson:"positions"`
}

// ByNode returns the positions indexed by node ID.
func (l *Layout) ByNode() map[string]Position {
	idx := make(map[string]Position, len(l.Positions))
	for _, p := range l.Positions {
		idx[p.Node] = p
	}
	return idx
}

// TierCount returns the number of tiers in the layout, including the extra
// tier holding isolated nodes when present.
func (l *Layout) TierCount() int {
	count := 0
	for _, p := range l.Positions {
		if p.Tier+1 > count {
			count = p.Tier + 1
		}
	}
	return count
}

// Covers checks that the layout places every node of the graph exactly
// once and nothing else. Returns a [LayoutError] naming the first missing
// or foreign node.
func (l *Layout) Covers(g *topo.Graph) error {
	placed := make(map[string]int, len(l.Positions))
	for _, p := range l.Positions {
		placed[p.Node]++
	}
	for _, id := range g.NodeIDs() {
		switch placed[id] {
		case 1:
		case 0:
			return &LayoutError{Reason: fmt.Sprintf("node %q has no position", id)}
		default:
			return &LayoutError{Reason: fmt.Sprintf("node %q placed %d times", id, placed[id])}
		}
	}
	if len(placed) != g.NodeCount() {
		for _, p := range l.Positions {
			if _, ok := g.Node(p.Node); !ok {
				return &LayoutError{Reason: fmt.Sprintf("position for unknown node %q", p.Node)}
			}
		}
	}
	return nil
}

// Options configures [Compute]. The zero value selects the horizontal
// orientation and the degree-based tier strategy.
type Options struct {
	// Orientation selects the axis mapping. Empty defaults to Horizontal.
	Orientation Orientation

	// Strategy assigns tiers to connected nodes. Nil defaults to
	// [DegreeStrategy].
	Strategy TierStrategy

	// TierHints pins specific nodes to fixed tiers before inference runs
	// for the rest. Hints win over role hints carried by the nodes.
	TierHints map[string]int
}

// Compute lays out the graph and returns a placement covering every node
// exactly once.
//
// Connected nodes are tiered by the configured strategy, with node role
// hints (spine to tier 0, leaf to tier 1) and explicit TierHints pinned on
// top. Tier indices are then compressed to a consecutive range, nodes are
// ordered within their tiers, and isolated nodes are appended as one final
// tier. Identical input always produces an identical Layout.
//
// Fails with [LayoutError] if the graph has no nodes.
func Compute(g *topo.Graph, opts Options) (*Layout, error) {
	if g == nil || g.NodeCount() == 0 {
		return nil, &LayoutError{Reason: "graph has no nodes"}
	}
	orientation := opts.Orientation
	if orientation == "" {
		orientation = Horizontal
	}
	if orientation != Horizontal && orientation != Vertical {
		return nil, &LayoutError{Reason: fmt.Sprintf("unknown orientation %q", orientation)}
	}

	strategy := opts.Strategy
	if strategy == nil {
		strategy = DegreeStrategy{}
	}
	if pinned := pinnedTiers(g, opts.TierHints); len(pinned) > 0 {
		strategy = ExplicitStrategy{Tiers: pinned, Fallback: strategy}
	}

	tiers := compressTiers(strategy.AssignTiers(g))
	tierCount := 0
	for _, t := range tiers {
		if t+1 > tierCount {
			tierCount = t + 1
		}
	}

	ordered := orderTiers(g, tiers, tierCount)

	// Isolated nodes go to one extra tier after all connected tiers.
	if isolated := g.IsolatedNodes(); len(isolated) > 0 {
		tier := make([]string, len(isolated))
		for i, n := range isolated {
			tier[i] = n.ID
		}
		ordered = append(ordered, tier)
	}

	l := &Layout{Orientation: orientation}
	widest := 0
	for _, tier := range ordered {
		if len(tier) > widest {
			widest = len(tier)
		}
	}
	maxSpread := float64(widest-1) * NodeGap

	for t, tier := range ordered {
		offset := (maxSpread - float64(len(tier)-1)*NodeGap) / 2
		for i, id := range tier {
			spread := offset + float64(i)*NodeGap
			stack := float64(t) * TierGap
			p := Position{Node: id, Tier: t}
			if orientation == Horizontal {
				p.X, p.Y = spread, stack
			} else {
				p.X, p.Y = stack, spread
			}
			l.Positions = append(l.Positions, p)
		}
	}

	if err := l.Covers(g); err != nil {
		return nil, err
	}
	return l, nil
}

// pinnedTiers merges explicit hints with role hints carried by the nodes.
// Explicit hints win. Spines pin to tier 0, leaves to tier 1.
func pinnedTiers(g *topo.Graph, hints map[string]int) map[string]int {
	pinned := make(map[string]int)
	for _, n := range g.Nodes() {
		if n.Isolated {
			continue
		}
		switch n.Role {
		case topo.RoleSpine:
			pinned[n.ID] = 0
		case topo.RoleLeaf:
			pinned[n.ID] = 1
		}
	}
	for id, t := range hints {
		if _, ok := g.Node(id); ok {
			pinned[id] = t
		}
	}
	if len(pinned) == 0 {
		return nil
	}
	return pinned
}

// compressTiers renumbers tier values to a consecutive range starting at
// zero, preserving their relative order. Pinning and custom strategies may
// leave gaps; the grid wants dense tier indices.
func compressTiers(tiers map[string]int) map[string]int {
	if len(tiers) == 0 {
		return tiers
	}
	distinct := make(map[int]bool, len(tiers))
	for _, t := range tiers {
		distinct[t] = true
	}
	values := make([]int, 0, len(distinct))
	for t := range distinct {
		values = append(values, t)
	}
	sort.Ints(values)
	rank := make(map[int]int, len(values))
	for i, t := range values {
		rank[t] = i
	}
	out := make(map[string]int, len(tiers))
	for id, t := range tiers {
		out[id] = rank[t]
	}
	return out
}
