// Package diagram produces the coordinate document a rendering tool
// consumes: every node with its (x, y) position and tier, plus the link
// list unchanged from the lab topology. The document is pure data; drawing
// it is somebody else's job.
package diagram

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/topolab/pkg/topo"
	"github.com/matzehuels/topolab/pkg/topo/layout"
)

// Document pairs placed nodes with the topology's link list.
type Document struct {
	Orientation string `json:"orientation" bson:"orientation"`
	Nodes       []Node `json:"nodes" bson:"nodes"`
	Links       []Link `json:"links" bson:"links"`
}

// Node is one placed node.
type Node struct {
	ID   string  `json:"id" bson:"id"`
	Name string  `json:"name,omitempty" bson:"name,omitempty"` // display name when it differs from the ID
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
	Tier int     `json:"tier" bson:"tier"`
}

// Link is one endpoint pair in "<node>:<interface>" form, exactly as the
// lab topology declares it.
type Link struct {
	Endpoints []string `json:"endpoints" bson:"endpoints"`
}

// Build combines a graph and its layout into a diagram document. Nodes
// appear in layout order (tier-major), links in graph order, so output is
// deterministic.
//
// Fails with [layout.LayoutError] when the layout does not cover the graph
// exactly; the graph is left untouched and can still be exported as a lab
// topology.
func Build(g *topo.Graph, l *layout.Layout) (*Document, error) {
	if err := l.Covers(g); err != nil {
		return nil, err
	}

	doc := &Document{
		Orientation: string(l.Orientation),
		Nodes:       make([]Node, 0, len(l.Positions)),
		Links:       make([]Link, 0, g.LinkCount()),
	}
	for _, p := range l.Positions {
		dn := Node{ID: p.Node, X: p.X, Y: p.Y, Tier: p.Tier}
		if n, ok := g.Node(p.Node); ok && n.Name != n.ID {
			dn.Name = n.Name
		}
		doc.Nodes = append(doc.Nodes, dn)
	}
	for _, l := range g.Links() {
		doc.Links = append(doc.Links, Link{Endpoints: []string{l.A.Key(), l.B.Key()}})
	}
	return doc, nil
}

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument serializes a document to pretty-printed JSON bytes.
func MarshalDocument(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument deserializes JSON bytes into a document and checks the
// required fields are present.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal diagram: %w", err)
	}
	if len(d.Nodes) == 0 {
		return nil, fmt.Errorf("diagram document must contain nodes")
	}
	if _, err := layout.ParseOrientation(d.Orientation); err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteDocumentFile writes a document to a JSON file.
func WriteDocumentFile(d *Document, path string) error {
	data, err := MarshalDocument(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDocumentFile reads a document from a JSON file.
func ReadDocumentFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDocument(data)
}
