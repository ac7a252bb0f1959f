package layout

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matzehuels/topolab/pkg/topo"
)

// link adds an undirected link between two nodes, creating them on demand.
func link(t *testing.T, g *topo.Graph, a, aPort, b, bPort string) {
	t.Helper()
	for _, id := range []string{a, b} {
		if _, ok := g.Node(id); !ok {
			if err := g.AddNode(topo.Node{ID: id}); err != nil {
				t.Fatal(err)
			}
		}
	}
	err := g.AddLink(topo.Link{
		A: topo.Endpoint{Node: a, Name: aPort},
		B: topo.Endpoint{Node: b, Name: bPort},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestComputeExampleScenario(t *testing.T) {
	// Two links A-B and B-C: B is the hub, A and C hang off it.
	g := topo.New()
	link(t, g, "A", "eth1", "B", "eth1")
	link(t, g, "B", "eth2", "C", "eth1")

	l, err := Compute(g, Options{Orientation: Horizontal})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	pos := l.ByNode()
	if pos["B"].Tier != 0 {
		t.Errorf("B tier = %d, want 0", pos["B"].Tier)
	}
	if pos["A"].Tier != 1 || pos["C"].Tier != 1 {
		t.Errorf("A/C tiers = %d/%d, want 1/1", pos["A"].Tier, pos["C"].Tier)
	}
	if pos["A"].Y != pos["C"].Y {
		t.Errorf("A and C should share a row: y = %g vs %g", pos["A"].Y, pos["C"].Y)
	}
	if pos["B"].Y == pos["A"].Y {
		t.Error("B should sit on a different row than A and C")
	}
	lo, hi := pos["A"].X, pos["C"].X
	if lo > hi {
		lo, hi = hi, lo
	}
	if !(lo < pos["B"].X && pos["B"].X < hi) {
		t.Errorf("B.x = %g, want strictly between %g and %g", pos["B"].X, lo, hi)
	}
}

func TestComputeDeterminism(t *testing.T) {
	build := func() *topo.Graph {
		g := topo.New()
		link(t, g, "spine1", "1/1/1", "leaf1", "1/1/1")
		link(t, g, "spine1", "1/1/2", "leaf2", "1/1/1")
		link(t, g, "spine2", "1/1/1", "leaf1", "1/1/2")
		link(t, g, "spine2", "1/1/2", "leaf2", "1/1/2")
		g.AddNode(topo.Node{ID: "lonely"})
		return g
	}

	first, err := Compute(build(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compute(build(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("layouts differ:\n%s\n%s", a, b)
	}
}

func TestComputeNonOverlap(t *testing.T) {
	g := topo.New()
	link(t, g, "spine1", "1/1/1", "leaf1", "1/1/1")
	link(t, g, "spine1", "1/1/2", "leaf2", "1/1/1")
	link(t, g, "spine1", "1/1/3", "leaf3", "1/1/1")
	link(t, g, "spine2", "1/1/1", "leaf1", "1/1/2")
	link(t, g, "spine2", "1/1/2", "leaf3", "1/1/2")
	g.AddNode(topo.Node{ID: "mgmt-sw"})

	l, err := Compute(g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(l.Positions); i++ {
		for j := i + 1; j < len(l.Positions); j++ {
			a, b := l.Positions[i], l.Positions[j]
			if a.X == b.X && a.Y == b.Y {
				t.Errorf("%s and %s share coordinates (%g, %g)", a.Node, b.Node, a.X, a.Y)
			}
			if a.Tier == b.Tier {
				gap := a.X - b.X
				if l.Orientation == Vertical {
					gap = a.Y - b.Y
				}
				if gap < 0 {
					gap = -gap
				}
				if gap < NodeGap {
					t.Errorf("%s and %s in tier %d only %g apart, want >= %g",
						a.Node, b.Node, a.Tier, gap, NodeGap)
				}
			}
		}
	}
}

func TestComputeVertical(t *testing.T) {
	g := topo.New()
	link(t, g, "A", "eth1", "B", "eth1")
	link(t, g, "B", "eth2", "C", "eth1")

	h, err := Compute(g, Options{Orientation: Horizontal})
	if err != nil {
		t.Fatal(err)
	}
	v, err := Compute(g, Options{Orientation: Vertical})
	if err != nil {
		t.Fatal(err)
	}

	hp, vp := h.ByNode(), v.ByNode()
	for _, id := range g.NodeIDs() {
		if hp[id].X != vp[id].Y || hp[id].Y != vp[id].X {
			t.Errorf("%s: vertical should transpose horizontal, got (%g,%g) vs (%g,%g)",
				id, hp[id].X, hp[id].Y, vp[id].X, vp[id].Y)
		}
		if hp[id].Tier != vp[id].Tier {
			t.Errorf("%s: tier changed with orientation: %d vs %d", id, hp[id].Tier, vp[id].Tier)
		}
	}
}

func TestComputeIsolatedFinalTier(t *testing.T) {
	g := topo.New()
	link(t, g, "spine1", "1/1/1", "leaf1", "1/1/1")
	g.AddNode(topo.Node{ID: "orphan1"})
	g.AddNode(topo.Node{ID: "orphan2"})

	l, err := Compute(g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	pos := l.ByNode()
	last := l.TierCount() - 1
	if pos["orphan1"].Tier != last || pos["orphan2"].Tier != last {
		t.Errorf("orphan tiers = %d/%d, want final tier %d",
			pos["orphan1"].Tier, pos["orphan2"].Tier, last)
	}
	for _, id := range []string{"spine1", "leaf1"} {
		if pos[id].Tier == last {
			t.Errorf("connected node %s placed in the isolated tier", id)
		}
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	_, err := Compute(topo.New(), Options{})
	if err == nil {
		t.Fatal("expected error for empty graph")
	}

	var le *LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("error type = %T, want *LayoutError", err)
	}
}

func TestComputeTierHints(t *testing.T) {
	g := topo.New()
	link(t, g, "A", "eth1", "B", "eth1")
	link(t, g, "B", "eth2", "C", "eth1")

	// Force the hub away from tier 0. Tier numbers are compressed, so A
	// and C move up and B lands below them.
	l, err := Compute(g, Options{TierHints: map[string]int{"B": 9}})
	if err != nil {
		t.Fatal(err)
	}

	pos := l.ByNode()
	if pos["A"].Tier != 0 || pos["C"].Tier != 0 {
		t.Errorf("A/C tiers = %d/%d, want 0/0", pos["A"].Tier, pos["C"].Tier)
	}
	if pos["B"].Tier != 1 {
		t.Errorf("B tier = %d, want 1 after compression", pos["B"].Tier)
	}
}

func TestComputeRolePins(t *testing.T) {
	g := topo.New()
	g.AddNode(topo.Node{ID: "pe1", Role: topo.RoleLeaf})
	g.AddNode(topo.Node{ID: "pe2", Role: topo.RoleSpine})
	link(t, g, "pe1", "1/1/1", "pe2", "1/1/1")

	l, err := Compute(g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	pos := l.ByNode()
	if pos["pe2"].Tier != 0 {
		t.Errorf("spine tier = %d, want 0", pos["pe2"].Tier)
	}
	if pos["pe1"].Tier != 1 {
		t.Errorf("leaf tier = %d, want 1", pos["pe1"].Tier)
	}
}

func TestComputeCoverage(t *testing.T) {
	g := topo.New()
	link(t, g, "spine1", "1/1/1", "leaf1", "1/1/1")
	g.AddNode(topo.Node{ID: "orphan"})

	l, err := Compute(g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Positions) != g.NodeCount() {
		t.Fatalf("positions = %d, want %d", len(l.Positions), g.NodeCount())
	}
	if err := l.Covers(g); err != nil {
		t.Errorf("Covers() = %v, want nil", err)
	}
}

func TestCoversDetectsMismatch(t *testing.T) {
	g := topo.New()
	g.AddNode(topo.Node{ID: "pe1"})
	g.AddNode(topo.Node{ID: "pe2"})

	tests := []struct {
		name   string
		layout Layout
	}{
		{
			name: "MissingNode",
			layout: Layout{Positions: []Position{
				{Node: "pe1"},
			}},
		},
		{
			name: "DuplicateNode",
			layout: Layout{Positions: []Position{
				{Node: "pe1"}, {Node: "pe1", X: NodeGap}, {Node: "pe2"},
			}},
		},
		{
			name: "ForeignNode",
			layout: Layout{Positions: []Position{
				{Node: "pe1"}, {Node: "pe2"}, {Node: "pe9"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Covers(g)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var le *LayoutError
			if !errors.As(err, &le) {
				t.Fatalf("error type = %T, want *LayoutError", err)
			}
		})
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		input   string
		want    Orientation
		wantErr bool
	}{
		{input: "horizontal", want: Horizontal},
		{input: "vertical", want: Vertical},
		{input: "", want: Horizontal},
		{input: "diagonal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrientation(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOrientation(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseOrientation(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
