package layout

import (
	"testing"

	"github.com/matzehuels/topolab/pkg/topo"
)

func TestCountTierCrossings(t *testing.T) {
	tests := []struct {
		name  string
		links [][4]string // aNode, aPort, bNode, bPort
		upper []string
		lower []string
		want  int
	}{
		{
			name: "NoCrossing",
			links: [][4]string{
				{"s1", "1", "l1", "1"},
				{"s2", "1", "l2", "1"},
			},
			upper: []string{"s1", "s2"},
			lower: []string{"l1", "l2"},
			want:  0,
		},
		{
			name: "SingleCrossing",
			links: [][4]string{
				{"s1", "1", "l2", "1"},
				{"s2", "1", "l1", "1"},
			},
			upper: []string{"s1", "s2"},
			lower: []string{"l1", "l2"},
			want:  1,
		},
		{
			name: "FullMeshTwoByTwo",
			links: [][4]string{
				{"s1", "1", "l1", "1"},
				{"s1", "2", "l2", "1"},
				{"s2", "1", "l1", "2"},
				{"s2", "2", "l2", "2"},
			},
			upper: []string{"s1", "s2"},
			lower: []string{"l1", "l2"},
			want:  1,
		},
		{
			name: "EmptyTier",
			links: [][4]string{
				{"s1", "1", "l1", "1"},
			},
			upper: []string{"s1"},
			lower: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := topo.New()
			for _, l := range tt.links {
				link(t, g, l[0], l[1], l[2], l[3])
			}

			if got := CountTierCrossings(g, tt.upper, tt.lower); got != tt.want {
				t.Errorf("CountTierCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountCrossingsSumsTierPairs(t *testing.T) {
	// Crossed pair between tiers 0/1, straight pair between tiers 1/2.
	g := topo.New()
	link(t, g, "s1", "1", "l2", "1")
	link(t, g, "s2", "1", "l1", "1")
	link(t, g, "l1", "2", "h1", "1")
	link(t, g, "l2", "2", "h2", "1")

	ordered := [][]string{
		{"s1", "s2"},
		{"l1", "l2"},
		{"h1", "h2"},
	}
	if got := CountCrossings(g, ordered); got != 1 {
		t.Errorf("CountCrossings() = %d, want 1", got)
	}

	// Swapping the bottom tier introduces a second crossing.
	ordered[2] = []string{"h2", "h1"}
	if got := CountCrossings(g, ordered); got != 2 {
		t.Errorf("CountCrossings() after swap = %d, want 2", got)
	}
}

func TestOrderTiersReducesCrossings(t *testing.T) {
	// Leaf discovery order (l2 before l1) starts crossed against the hub
	// order; the barycenter pass straightens it out.
	g := topo.New()
	for _, id := range []string{"s1", "s2", "l2", "l1"} {
		if err := g.AddNode(topo.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	link(t, g, "s1", "1", "l1", "1")
	link(t, g, "s2", "1", "l2", "1")

	tiers := map[string]int{"s1": 0, "s2": 0, "l2": 1, "l1": 1}

	if got := CountCrossings(g, [][]string{{"s1", "s2"}, {"l2", "l1"}}); got != 1 {
		t.Fatalf("crossings in discovery order = %d, want 1", got)
	}

	ordered := orderTiers(g, tiers, 2)
	if got := CountCrossings(g, ordered); got != 0 {
		t.Errorf("crossings after ordering = %d, want 0", got)
	}
	if ordered[1][0] != "l1" || ordered[1][1] != "l2" {
		t.Errorf("tier 1 order = %v, want [l1 l2]", ordered[1])
	}
}
