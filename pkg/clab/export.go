package clab

import (
	"github.com/matzehuels/topolab/pkg/topo"
)

// ExportOptions configures [Export]. Zero values fall back to the package
// defaults.
type ExportOptions struct {
	Name  string // lab name, omitted from the document when empty
	Kind  string // node kind, defaults to DefaultKind
	Image string // node image, defaults to DefaultImage
}

// Export converts a canonical graph to a containerlab document. Every node
// appears in the node mapping, isolated ones included, and every link
// becomes one endpoint pair using the logical interface names (the LAG name
// for aggregated links). Export is a pure function: an empty graph yields
// an empty but valid document.
func Export(g *topo.Graph, opts ExportOptions) *Document {
	kind := opts.Kind
	if kind == "" {
		kind = DefaultKind
	}
	image := opts.Image
	if image == "" {
		image = DefaultImage
	}

	doc := &Document{
		Name: opts.Name,
		Topology: Topology{
			Nodes: make(map[string]NodeSpec, g.NodeCount()),
		},
	}

	for _, n := range g.Nodes() {
		spec := NodeSpec{
			Kind:     kind,
			Image:    image,
			MgmtIPv4: n.MgmtAddress,
		}
		labels := make(map[string]string)
		if n.Name != n.ID {
			labels[LabelName] = n.Name
		}
		if n.Role != topo.RoleUndetermined {
			labels[LabelRole] = n.Role.String()
		}
		if len(labels) > 0 {
			spec.Labels = labels
		}
		doc.Topology.Nodes[n.ID] = spec
	}

	for _, l := range g.Links() {
		doc.Topology.Links = append(doc.Topology.Links, LinkSpec{
			Endpoints: []string{l.A.Key(), l.B.Key()},
		})
	}
	return doc
}
