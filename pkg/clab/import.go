package clab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/topolab/pkg/topo"
)

// Import re-derives a canonical graph from a containerlab document. Node
// names are walked in sorted order so repeated imports build identical
// graphs. Labels written by [Export] restore display names and roles.
//
// The document must be internally consistent: every link endpoint has to
// be "<node>:<interface>" with a declared node, link pairs must be unique,
// and no link may connect a node to itself.
func Import(doc *Document) (*topo.Graph, error) {
	g := topo.New()

	names := make([]string, 0, len(doc.Topology.Nodes))
	for name := range doc.Topology.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := doc.Topology.Nodes[name]
		n := topo.Node{
			ID:          name,
			Name:        spec.Labels[LabelName],
			MgmtAddress: spec.MgmtIPv4,
		}
		if label, ok := spec.Labels[LabelRole]; ok {
			role, err := topo.ParseRole(label)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
			n.Role = role
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
	}

	for i, l := range doc.Topology.Links {
		if len(l.Endpoints) != 2 {
			return nil, fmt.Errorf("link %d: want 2 endpoints, got %d", i, len(l.Endpoints))
		}
		a, err := parseEndpoint(l.Endpoints[0])
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		b, err := parseEndpoint(l.Endpoints[1])
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		link := topo.Link{A: a, B: b, Name: a.Key() + "--" + b.Key()}
		if err := g.AddLink(link); err != nil {
			return nil, fmt.Errorf("link %d (%s): %w", i, link.Name, err)
		}
	}
	return g, nil
}

// parseEndpoint splits a "<node>:<interface>" endpoint string. Interface
// names may contain further colons; only the first one separates the node.
func parseEndpoint(s string) (topo.Endpoint, error) {
	node, iface, ok := strings.Cut(s, ":")
	if !ok || node == "" || iface == "" {
		return topo.Endpoint{}, fmt.Errorf("malformed endpoint %q, want node:interface", s)
	}
	return topo.Endpoint{Node: node, Name: iface, Kind: topo.EndpointPort}, nil
}
