package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/topolab/pkg/topo"
)

// orderTiers arranges the connected nodes of each tier left to right.
//
// Tier 0 keeps first-seen order. Each later tier sorts by the barycenter of
// its nodes' neighbors in the tier above: the sort key is the mean position
// of those neighbors, so a node settles under the center of what it
// connects to. Nodes with no neighbor in the tier above sort after all
// anchored nodes. The sort is stable, so equal keys fall back to the
// incoming first-seen order.
func orderTiers(g *topo.Graph, tiers map[string]int, tierCount int) [][]string {
	ordered := make([][]string, tierCount)
	for _, n := range g.Nodes() {
		if n.Isolated {
			continue
		}
		t := tiers[n.ID]
		ordered[t] = append(ordered[t], n.ID)
	}

	for t := 1; t < tierCount; t++ {
		prevPos := posMap(ordered[t-1])
		keys := make(map[string]float64, len(ordered[t]))
		for _, id := range ordered[t] {
			keys[id] = barycenter(g, id, prevPos)
		}
		slices.SortStableFunc(ordered[t], func(a, b string) int {
			ka, kb := keys[a], keys[b]
			if ka < kb {
				return -1
			}
			if ka > kb {
				return 1
			}
			return 0
		})
	}

	transpose(g, ordered)
	return ordered
}

// barycenter returns the mean position of the node's neighbors within the
// given tier, or +Inf when none of its neighbors are placed there.
func barycenter(g *topo.Graph, id string, tierPos map[string]int) float64 {
	sum, count := 0, 0
	for _, nid := range g.Neighbors(id) {
		if pos, ok := tierPos[nid]; ok {
			sum += pos
			count++
		}
	}
	if count == 0 {
		return math.Inf(1)
	}
	return float64(sum) / float64(count)
}

// transpose swaps adjacent nodes within a tier when the swap strictly
// reduces crossings against the tiers above and below. Bounded passes and
// strict improvement keep it deterministic and terminating.
func transpose(g *topo.Graph, ordered [][]string) {
	const maxPasses = 4
	for pass := 0; pass < maxPasses; pass++ {
		improved := false
		for t := range ordered {
			var abovePos, belowPos map[string]int
			if t > 0 {
				abovePos = posMap(ordered[t-1])
			}
			if t+1 < len(ordered) {
				belowPos = posMap(ordered[t+1])
			}
			tier := ordered[t]
			for i := 0; i+1 < len(tier); i++ {
				left, right := tier[i], tier[i+1]
				if pairCrossings(g, right, left, abovePos, belowPos) < pairCrossings(g, left, right, abovePos, belowPos) {
					tier[i], tier[i+1] = right, left
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

// pairCrossings counts the crossings the adjacent pair (left before right)
// produces against both neighboring tiers. Links land on the same side for
// both nodes, so a crossing occurs exactly when left's neighbor sits to the
// right of right's neighbor.
func pairCrossings(g *topo.Graph, left, right string, abovePos, belowPos map[string]int) int {
	crossings := 0
	for _, adjPos := range []map[string]int{abovePos, belowPos} {
		if adjPos == nil {
			continue
		}
		for _, ln := range g.Neighbors(left) {
			lp, ok := adjPos[ln]
			if !ok {
				continue
			}
			for _, rn := range g.Neighbors(right) {
				if rp, ok := adjPos[rn]; ok && lp > rp {
					crossings++
				}
			}
		}
	}
	return crossings
}
