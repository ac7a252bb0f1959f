package layout

import (
	"github.com/matzehuels/topolab/pkg/topo"
)

// TierStrategy assigns a tier index to every connected node of a graph.
// Implementations must be deterministic: identical graphs yield identical
// assignments. Isolated nodes are outside a strategy's responsibility; the
// engine appends them as a final tier of their own.
type TierStrategy interface {
	AssignTiers(g *topo.Graph) map[string]int
}

// DegreeStrategy infers tiers from connectivity, matching the usual fabric
// shape: the best-connected devices form the hub tier and everything else
// hangs off them.
//
// A node is a hub unless at least half of its neighbors have strictly
// higher degree. The node with the highest degree in a component always
// qualifies, so every component contributes at least one hub. Non-hubs are
// then tiered by breadth-first hop distance from the hub set, which places
// each node one tier below the closest hub and keeps chains (hub, switch,
// host) in distinct tiers.
type DegreeStrategy struct{}

// AssignTiers implements [TierStrategy].
func (DegreeStrategy) AssignTiers(g *topo.Graph) map[string]int {
	var hubs []string
	for _, n := range g.Nodes() {
		if n.Isolated {
			continue
		}
		neighbors := g.Neighbors(n.ID)
		higher := 0
		for _, nid := range neighbors {
			if g.Degree(nid) > g.Degree(n.ID) {
				higher++
			}
		}
		if 2*higher < len(neighbors) {
			hubs = append(hubs, n.ID)
		}
	}
	return bfsTiers(g, hubs)
}

// DistanceStrategy tiers each component by hop distance from its
// best-connected node. Unlike [DegreeStrategy] it admits exactly the
// maximum-degree nodes as roots, which yields deeper tierings on meshy
// graphs where the degree heuristic would flatten everything into tier 0.
type DistanceStrategy struct{}

// AssignTiers implements [TierStrategy].
func (DistanceStrategy) AssignTiers(g *topo.Graph) map[string]int {
	// Component discovery in first-seen order, then the maximum-degree
	// nodes of each component become its BFS roots.
	visited := make(map[string]bool, g.NodeCount())
	var roots []string
	for _, n := range g.Nodes() {
		if n.Isolated || visited[n.ID] {
			continue
		}
		component := []string{n.ID}
		visited[n.ID] = true
		for i := 0; i < len(component); i++ {
			for _, nid := range g.Neighbors(component[i]) {
				if !visited[nid] {
					visited[nid] = true
					component = append(component, nid)
				}
			}
		}
		max := 0
		for _, id := range component {
			if d := g.Degree(id); d > max {
				max = d
			}
		}
		for _, id := range component {
			if g.Degree(id) == max {
				roots = append(roots, id)
			}
		}
	}
	return bfsTiers(g, roots)
}

// ExplicitStrategy pins chosen nodes to fixed tiers and delegates the rest
// to a fallback strategy. The engine uses it to honor role hints and
// command-line tier overrides without giving up inference for unmentioned
// nodes.
type ExplicitStrategy struct {
	Tiers    map[string]int // node ID -> pinned tier
	Fallback TierStrategy   // nil defaults to DegreeStrategy
}

// AssignTiers implements [TierStrategy].
func (s ExplicitStrategy) AssignTiers(g *topo.Graph) map[string]int {
	fallback := s.Fallback
	if fallback == nil {
		fallback = DegreeStrategy{}
	}
	tiers := fallback.AssignTiers(g)
	for _, n := range g.Nodes() {
		if n.Isolated {
			continue
		}
		if t, ok := s.Tiers[n.ID]; ok {
			tiers[n.ID] = t
		}
	}
	return tiers
}

// bfsTiers assigns each connected node its hop distance from the root set.
// Nodes unreachable from any root keep walking up from the deepest reached
// tier; with at least one root per component that does not happen.
func bfsTiers(g *topo.Graph, roots []string) map[string]int {
	tiers := make(map[string]int, g.NodeCount())
	queue := make([]string, 0, len(roots))
	for _, id := range roots {
		if _, seen := tiers[id]; !seen {
			tiers[id] = 0
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, nid := range g.Neighbors(curr) {
			if _, seen := tiers[nid]; !seen {
				tiers[nid] = tiers[curr] + 1
				queue = append(queue, nid)
			}
		}
	}

	// Safety net for nodes no root reaches. Walk remaining nodes in
	// first-seen order and drop them one tier below their deepest placed
	// neighbor, or at tier 0 when nothing near them is placed yet.
	for _, n := range g.Nodes() {
		if n.Isolated {
			continue
		}
		if _, seen := tiers[n.ID]; seen {
			continue
		}
		deepest := -1
		for _, nid := range g.Neighbors(n.ID) {
			if t, ok := tiers[nid]; ok && t > deepest {
				deepest = t
			}
		}
		tiers[n.ID] = deepest + 1
	}
	return tiers
}
