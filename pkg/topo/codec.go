package topo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// graphDoc is the JSON form of a canonical [Graph]. Nodes and links appear in
// insertion order, so serializing the same graph always produces the same
// bytes. Decoding replays the records through [Graph.AddNode] and
// [Graph.AddLink], which re-checks every structural invariant.
type graphDoc struct {
	Nodes []graphNode `json:"nodes"`
	Links []graphLink `json:"links,omitempty"`
}

type graphNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"` // omitted when identical to ID
	MgmtAddress string   `json:"mgmt_address,omitempty"`
	Role        string   `json:"role,omitempty"`
	Ports       []string `json:"ports,omitempty"`
}

type graphLink struct {
	Name string        `json:"name,omitempty"`
	A    graphEndpoint `json:"a"`
	B    graphEndpoint `json:"b"`
}

type graphEndpoint struct {
	Node           string `json:"node"`
	Name           string `json:"name"`
	Kind           string `json:"kind,omitempty"` // "lag" for group endpoints, omitted for ports
	BreakoutParent string `json:"breakout_parent,omitempty"`
}

// MarshalGraph converts a canonical graph to pretty-printed JSON bytes.
// Output is deterministic, which makes it usable as a content hash input.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph deserializes JSON bytes into a canonical graph, validating
// every node and link on the way in.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return readGraphFrom(bytes.NewReader(data))
}

// WriteGraphFile writes a canonical graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a canonical graph as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded canonical graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON canonical graph from an io.Reader.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var doc graphDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return toGraph(doc)
}

func fromGraph(g *Graph) graphDoc {
	doc := graphDoc{Nodes: make([]graphNode, 0, g.NodeCount())}
	for _, n := range g.Nodes() {
		gn := graphNode{ID: n.ID, MgmtAddress: n.MgmtAddress, Ports: n.Ports}
		if n.Name != n.ID {
			gn.Name = n.Name
		}
		if n.Role != RoleUndetermined {
			gn.Role = n.Role.String()
		}
		doc.Nodes = append(doc.Nodes, gn)
	}
	for _, l := range g.Links() {
		doc.Links = append(doc.Links, graphLink{
			Name: l.Name,
			A:    fromEndpoint(l.A),
			B:    fromEndpoint(l.B),
		})
	}
	return doc
}

func fromEndpoint(e Endpoint) graphEndpoint {
	ge := graphEndpoint{Node: e.Node, Name: e.Name, BreakoutParent: e.BreakoutParent}
	if e.Kind == EndpointLAG {
		ge.Kind = "lag"
	}
	return ge
}

func toGraph(doc graphDoc) (*Graph, error) {
	g := New()
	for _, gn := range doc.Nodes {
		role, err := ParseRole(gn.Role)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", gn.ID, err)
		}
		n := Node{ID: gn.ID, Name: gn.Name, MgmtAddress: gn.MgmtAddress, Role: role, Ports: gn.Ports}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, gl := range doc.Links {
		a, err := toEndpoint(gl.A)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", gl.Name, err)
		}
		b, err := toEndpoint(gl.B)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", gl.Name, err)
		}
		if err := g.AddLink(Link{A: a, B: b, Name: gl.Name}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func toEndpoint(ge graphEndpoint) (Endpoint, error) {
	e := Endpoint{Node: ge.Node, Name: ge.Name, BreakoutParent: ge.BreakoutParent}
	switch ge.Kind {
	case "", "port":
		e.Kind = EndpointPort
	case "lag":
		e.Kind = EndpointLAG
	default:
		return Endpoint{}, fmt.Errorf("unknown endpoint kind %q", ge.Kind)
	}
	return e, nil
}
