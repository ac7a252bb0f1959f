package topo_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/topolab/pkg/topo"
)

func ExampleNormalize() {
	// A bidirectional export: the first adjacency is reported twice.
	raw := &topo.RawTopology{
		Links: []topo.RawLink{
			{ANode: "A", APort: "eth1", BNode: "B", BPort: "eth1"},
			{ANode: "B", APort: "eth1", BNode: "A", BPort: "eth1"},
			{ANode: "B", APort: "eth2", BNode: "C", BPort: "eth1"},
		},
	}

	g, stats, err := topo.Normalize(raw, topo.NormalizeOptions{})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Nodes:", stats.Nodes)
	fmt.Println("Links:", stats.Links)
	fmt.Println("Duplicates suppressed:", stats.Duplicates)
	for _, l := range g.Links() {
		fmt.Println(l.Key())
	}
	// Output:
	// Nodes: 3
	// Links: 2
	// Duplicates suppressed: 1
	// A:eth1--B:eth1
	// B:eth2--C:eth1
}

func ExampleNormalize_lagCollapse() {
	// Two physical members of the same LAG collapse into one logical link.
	raw := &topo.RawTopology{
		Devices: []topo.Device{
			{ID: "leaf1", Ports: []topo.RawPort{
				{ID: "1/1/1", LAG: "lag-10"},
				{ID: "1/1/2", LAG: "lag-10"},
			}},
			{ID: "spine1", Ports: []topo.RawPort{
				{ID: "1/1/1", LAG: "lag-10"},
				{ID: "1/1/2", LAG: "lag-10"},
			}},
		},
		Links: []topo.RawLink{
			{ANode: "leaf1", APort: "1/1/1", BNode: "spine1", BPort: "1/1/1"},
			{ANode: "leaf1", APort: "1/1/2", BNode: "spine1", BPort: "1/1/2"},
		},
	}

	g, _, err := topo.Normalize(raw, topo.NormalizeOptions{})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, l := range g.Links() {
		fmt.Println(l.Key())
	}
	// Output:
	// leaf1:lag-10--spine1:lag-10
}

func ExampleReadRaw() {
	jsonData := `{
		"devices": [
			{"id": "pe1", "mgmt_address": "10.0.0.1"},
			{"id": "pe2", "mgmt_address": "10.0.0.2"}
		],
		"links": [
			{"a_node": "pe1", "a_port": "1/1/1", "b_node": "pe2", "b_port": "1/1/1"}
		]
	}`

	raw, err := topo.ReadRaw(strings.NewReader(jsonData))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Devices:", len(raw.Devices))
	fmt.Println("Links:", len(raw.Links))
	// Output:
	// Devices: 2
	// Links: 1
}
