package layout

import (
	"slices"

	"github.com/matzehuels/topolab/pkg/topo"
)

// CountCrossings returns the total number of link crossings for the given
// tier orderings. It sums the crossings between each pair of consecutive
// tiers. Links inside a single tier and links spanning more than one tier
// apart do not contribute.
//
// The ordering heuristic uses this to compare candidate arrangements; it is
// also handy as a diagnostic when a rendered diagram looks tangled.
func CountCrossings(g *topo.Graph, ordered [][]string) int {
	crossings := 0
	for i := 0; i+1 < len(ordered); i++ {
		crossings += CountTierCrossings(g, ordered[i], ordered[i+1])
	}
	return crossings
}

// CountTierCrossings counts link crossings between two adjacent ordered
// tiers using a Fenwick tree (binary indexed tree) in O(E log V), where E
// is the number of links between the tiers and V the size of the lower
// tier.
//
// Two links (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// which is the number of inversions in the sequence of lower positions once
// links are sorted by upper position. Returns 0 if either tier is empty, as
// no crossings can exist without links.
func CountTierCrossings(g *topo.Graph, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	upperPos := posMap(upper)
	lowerPos := posMap(lower)

	type span struct{ upper, lower int }
	var spans []span
	for _, l := range g.Links() {
		ua, inUpperA := upperPos[l.A.Node]
		ub, inUpperB := upperPos[l.B.Node]
		la, inLowerA := lowerPos[l.A.Node]
		lb, inLowerB := lowerPos[l.B.Node]
		switch {
		case inUpperA && inLowerB:
			spans = append(spans, span{ua, lb})
		case inUpperB && inLowerA:
			spans = append(spans, span{ub, la})
		}
	}
	if len(spans) < 2 {
		return 0
	}

	// Sort by upper position, then by lower position
	slices.SortFunc(spans, func(a, b span) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions using Fenwick tree
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, s := range spans {
		// Query: count spans seen so far with lower position <= s.lower
		lessOrEqual := 0
		for q := s.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Crossings = spans seen so far with lower position > s.lower
		crossings += total - lessOrEqual

		// Update: increment count at lower position
		total++
		for idx := s.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// posMap maps each node ID to its index in the ordered tier.
func posMap(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return pos
}
