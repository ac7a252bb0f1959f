package topo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty device identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Device identifiers must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEndpoint is returned by [Graph.AddLink] when an endpoint has
	// an empty node or interface name.
	ErrInvalidEndpoint = errors.New("endpoint node and name must not be empty")

	// ErrUnknownNode is returned by [Graph.AddLink] when an endpoint
	// references a node that has not been added to the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Graph.AddLink] when both endpoints resolve
	// to the same node. A device cannot be linked to itself.
	ErrSelfLoop = errors.New("link endpoints must be on distinct nodes")

	// ErrDuplicateLink is returned by [Graph.AddLink] when a link between the
	// same pair of endpoints already exists, regardless of endpoint order.
	// Bidirectional topology exports report each adjacency twice; the second
	// report is a duplicate of the first.
	ErrDuplicateLink = errors.New("duplicate link")

	// ErrEndpointInUse is returned by [Graph.AddLink] when an endpoint
	// already terminates another link. A physical port or LAG carries at most
	// one adjacency.
	ErrEndpointInUse = errors.New("endpoint already terminates another link")

	// ErrInvalidLinkEndpoint is returned by [Graph.Validate] when a stored
	// link references a node that no longer exists. This indicates graph
	// corruption.
	ErrInvalidLinkEndpoint = errors.New("invalid link endpoint")
)

// Role classifies a node's position in the fabric. Roles are optional hints:
// topology exports do not carry them, so most nodes stay [RoleUndetermined]
// and tier inference decides placement instead. An explicit role pins the
// node to the matching tier.
type Role int

const (
	// RoleUndetermined means no role was supplied and placement is inferred.
	RoleUndetermined Role = iota
	// RoleSpine pins the node to the hub tier.
	RoleSpine
	// RoleLeaf pins the node below the hub tier.
	RoleLeaf
)

// String returns the role name as used in profiles and node labels.
func (r Role) String() string {
	switch r {
	case RoleSpine:
		return "spine"
	case RoleLeaf:
		return "leaf"
	default:
		return "undetermined"
	}
}

// ParseRole converts a role label back to a [Role]. The empty string maps to
// RoleUndetermined.
func ParseRole(s string) (Role, error) {
	switch s {
	case "spine":
		return RoleSpine, nil
	case "leaf":
		return RoleLeaf, nil
	case "undetermined", "":
		return RoleUndetermined, nil
	default:
		return RoleUndetermined, fmt.Errorf("unknown role %q", s)
	}
}

// EndpointKind distinguishes the two logical connection point variants.
type EndpointKind int

const (
	// EndpointPort is a plain physical interface, including breakout channels.
	EndpointPort EndpointKind = iota
	// EndpointLAG is a link aggregation group. All member ports of the group
	// collapse into a single endpoint with this kind.
	EndpointLAG
)

// Endpoint is a logical connection point on a node: a physical port or a LAG.
// Endpoints are identified by the owning node ID plus the interface name, so
// the same interface name can appear on different nodes.
type Endpoint struct {
	Node string       // owning node ID
	Name string       // interface or LAG name, unique within the node
	Kind EndpointKind // port or LAG

	// BreakoutParent names the physical connector a breakout channel belongs
	// to (e.g. "1/1/c3" for channel "1/1/c3/2"). Diagnostic only; it does not
	// participate in endpoint identity.
	BreakoutParent string
}

// Key returns the node-qualified endpoint identity in "node:name" form.
func (e Endpoint) Key() string { return e.Node + ":" + e.Name }

// IsLAG reports whether the endpoint is a link aggregation group.
func (e Endpoint) IsLAG() bool { return e.Kind == EndpointLAG }

// IsBreakout reports whether the endpoint is a breakout channel of a larger
// physical connector.
func (e Endpoint) IsBreakout() bool { return e.BreakoutParent != "" }

// Link is an undirected connection between two endpoints on distinct nodes.
// The A/B distinction preserves the order of the first report; it carries no
// directional meaning.
type Link struct {
	A    Endpoint
	B    Endpoint
	Name string // vendor link name, kept for diagnostics
}

// Key returns a canonical identity for the link that is identical for both
// reporting directions: the endpoint keys joined in lexicographic order.
func (l Link) Key() string {
	a, b := l.A.Key(), l.B.Key()
	if b < a {
		a, b = b, a
	}
	return a + "--" + b
}

// Peer returns the endpoint opposite to the given node ID. The second return
// is false when the link does not touch the node.
func (l Link) Peer(nodeID string) (Endpoint, bool) {
	switch nodeID {
	case l.A.Node:
		return l.B, true
	case l.B.Node:
		return l.A, true
	}
	return Endpoint{}, false
}

// Node is a network element in the canonical graph.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID          string   // unique device identifier
	Name        string   // display name, defaults to ID
	MgmtAddress string   // management address, if known
	Role        Role     // optional placement hint, usually RoleUndetermined
	Ports       []string // declared interface names in inventory order
	Isolated    bool     // true while no link touches the node
}

// Graph is the canonical topology: nodes connected by undirected links
// between logical endpoints. It is the normalized form that lab exports and
// layout computation consume.
//
// Iteration order is deterministic: [Graph.Nodes] returns nodes in insertion
// order and [Graph.Links] returns links in insertion order, so repeated runs
// over the same input produce identical downstream artifacts.
//
// The zero value is not usable - use [New]. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	nodes     map[string]*Node
	order     []string            // node IDs in insertion order
	links     []Link
	linkKeys  map[string]int      // canonical link key -> index into links
	endpoints map[string]int      // endpoint key -> index into links
	adjacency map[string][]string // nodeID -> neighbor IDs in link order
}

// New creates an empty topology graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		linkKeys:  make(map[string]int),
		endpoints: make(map[string]int),
		adjacency: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the node ID
// is empty, or ErrDuplicateNodeID if a node with the same ID already exists.
// The node starts isolated; adding a link that touches it clears the flag.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Name == "" {
		n.Name = n.ID
	}
	n.Isolated = true
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddLink adds an undirected link between two endpoints. Both endpoint nodes
// must already exist. Returns ErrSelfLoop when the endpoints share a node,
// ErrDuplicateLink when the same endpoint pair is already linked (in either
// order), and ErrEndpointInUse when one of the endpoints already terminates
// a different link.
func (g *Graph) AddLink(l Link) error {
	if l.A.Node == "" || l.A.Name == "" || l.B.Node == "" || l.B.Name == "" {
		return ErrInvalidEndpoint
	}
	if _, ok := g.nodes[l.A.Node]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, l.A.Node)
	}
	if _, ok := g.nodes[l.B.Node]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, l.B.Node)
	}
	if l.A.Node == l.B.Node {
		return fmt.Errorf("%w: %s", ErrSelfLoop, l.A.Node)
	}
	key := l.Key()
	if _, exists := g.linkKeys[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLink, key)
	}
	for _, ep := range []Endpoint{l.A, l.B} {
		if _, used := g.endpoints[ep.Key()]; used {
			return fmt.Errorf("%w: %s", ErrEndpointInUse, ep.Key())
		}
	}

	idx := len(g.links)
	g.links = append(g.links, l)
	g.linkKeys[key] = idx
	g.endpoints[l.A.Key()] = idx
	g.endpoints[l.B.Key()] = idx
	g.adjacency[l.A.Node] = append(g.adjacency[l.A.Node], l.B.Node)
	g.adjacency[l.B.Node] = append(g.adjacency[l.B.Node], l.A.Node)
	g.nodes[l.A.Node].Isolated = false
	g.nodes[l.B.Node].Isolated = false
	return nil
}

// Node returns the node with the given ID, or false if it doesn't exist.
// The returned pointer references the graph's internal node.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The returned slice is a copy
// but the node pointers reference the graph's internal nodes.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Links returns a copy of all links in insertion order.
func (g *Graph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links in the graph.
func (g *Graph) LinkCount() int { return len(g.links) }

// HasLink reports whether a link between the two endpoints exists, in either
// endpoint order.
func (g *Graph) HasLink(a, b Endpoint) bool {
	_, ok := g.linkKeys[Link{A: a, B: b}.Key()]
	return ok
}

// EndpointLink returns the link terminated by the given endpoint. The second
// return is false when no link uses the endpoint.
func (g *Graph) EndpointLink(ep Endpoint) (Link, bool) {
	idx, ok := g.endpoints[ep.Key()]
	if !ok {
		return Link{}, false
	}
	return g.links[idx], true
}

// Neighbors returns the IDs of nodes directly linked to the given node, in
// link insertion order. Nodes connected through multiple links appear once.
func (g *Graph) Neighbors(id string) []string {
	adj := g.adjacency[id]
	if len(adj) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(adj))
	out := make([]string, 0, len(adj))
	for _, nid := range adj {
		if !seen[nid] {
			seen[nid] = true
			out = append(out, nid)
		}
	}
	return out
}

// Degree returns the number of links that touch the given node.
func (g *Graph) Degree(id string) int { return len(g.adjacency[id]) }

// IsolatedNodes returns the nodes without any links, in insertion order.
func (g *Graph) IsolatedNodes() []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Isolated {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks structural integrity: every link endpoint must reference
// an existing node and the endpoint usage index must agree with the stored
// links. Mutations via AddNode and AddLink preserve these properties, so a
// failure indicates external corruption of the graph.
func (g *Graph) Validate() error {
	for _, l := range g.links {
		for _, ep := range []Endpoint{l.A, l.B} {
			if _, ok := g.nodes[ep.Node]; !ok {
				return fmt.Errorf("%w: link %s references missing node %s",
					ErrInvalidLinkEndpoint, l.Key(), ep.Node)
			}
			idx, ok := g.endpoints[ep.Key()]
			if !ok || g.links[idx].Key() != l.Key() {
				return fmt.Errorf("%w: endpoint %s not indexed to its link",
					ErrInvalidLinkEndpoint, ep.Key())
			}
		}
	}
	return nil
}
