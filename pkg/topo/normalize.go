package topo

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// MalformedTopologyError reports a raw record that cannot be reconciled into
// the canonical graph: a link referencing a device or port the inventory
// does not know, a link whose endpoints resolve to the same device, or an
// inventory entry that is itself inconsistent.
type MalformedTopologyError struct {
	Link   string // vendor link name, if the offending record is a link
	Device string // device identifier involved, if any
	Port   string // port identifier involved, if any
	Reason string
}

// Error returns a message naming the offending record.
func (e *MalformedTopologyError) Error() string {
	msg := "malformed topology: " + e.Reason
	if e.Device != "" {
		msg += fmt.Sprintf(" (device %q", e.Device)
		if e.Port != "" {
			msg += fmt.Sprintf(", port %q", e.Port)
		}
		msg += ")"
	}
	if e.Link != "" {
		msg += fmt.Sprintf(" in link %q", e.Link)
	}
	return msg
}

// NormalizeOptions configures [Normalize].
type NormalizeOptions struct {
	// Logger receives per-record diagnostics at debug level.
	// Defaults to log.Default().
	Logger *log.Logger
}

// Stats summarizes what normalization did to the raw records. Counts refer
// to the canonical graph except Duplicates, which counts suppressed raw link
// records, and LAGs and Breakouts, which count logical endpoints.
type Stats struct {
	Nodes      int // nodes in the canonical graph
	Links      int // links in the canonical graph
	Duplicates int // raw link records suppressed as duplicates
	LAGs       int // distinct LAG endpoints links collapsed into
	Breakouts  int // distinct breakout channel endpoints on links
	Isolated   int // nodes without any links
}

// Normalize turns a raw topology export into a canonical [Graph].
//
// Devices become nodes in inventory order. Each raw link resolves its two
// port references to logical endpoints: a port that belongs to a LAG
// resolves to the group endpoint, a breakout channel keeps its own identity
// and records the parent connector, and any other port resolves to itself.
// Once both sides of an adjacency resolve to the same endpoint pair the
// second report is a duplicate; duplicates are logged and counted, never an
// error, and the first report wins. Devices that end up without links stay
// in the graph flagged isolated.
//
// When the export carries a device inventory it is authoritative: a link
// referencing a device absent from it, or a port absent from a device's
// declared interface list, fails with [MalformedTopologyError]. A device
// that declares no interfaces accepts any port name. Exports without any
// inventory build nodes from the link records themselves. A link whose
// endpoints resolve to the same device always fails.
func Normalize(raw *RawTopology, opts NormalizeOptions) (*Graph, *Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	g := New()
	stats := &Stats{}
	hasInventory := len(raw.Devices) > 0

	ports := make(map[string]map[string]RawPort, len(raw.Devices))
	for _, d := range raw.Devices {
		if d.ID == "" {
			return nil, nil, &MalformedTopologyError{Reason: "inventory entry with empty device identifier"}
		}
		if _, exists := ports[d.ID]; exists {
			return nil, nil, &MalformedTopologyError{Device: d.ID, Reason: "duplicate inventory entry"}
		}
		n := Node{ID: d.ID, Name: d.Name, MgmtAddress: d.MgmtAddress}
		byID := make(map[string]RawPort, len(d.Ports))
		for _, p := range d.Ports {
			if p.ID == "" {
				return nil, nil, &MalformedTopologyError{Device: d.ID, Reason: "port with empty identifier"}
			}
			if _, dup := byID[p.ID]; dup {
				return nil, nil, &MalformedTopologyError{Device: d.ID, Port: p.ID, Reason: "duplicate port"}
			}
			byID[p.ID] = p
			n.Ports = append(n.Ports, p.ID)
		}
		ports[d.ID] = byID
		if err := g.AddNode(n); err != nil {
			return nil, nil, fmt.Errorf("add node %s: %w", d.ID, err)
		}
	}

	lagSeen := make(map[string]bool)
	breakoutSeen := make(map[string]bool)

	for _, rl := range raw.Links {
		name := rl.Name
		if name == "" {
			name = fmt.Sprintf("%s:%s--%s:%s", rl.ANode, rl.APort, rl.BNode, rl.BPort)
		}
		if rl.ANode == "" || rl.APort == "" || rl.BNode == "" || rl.BPort == "" {
			return nil, nil, &MalformedTopologyError{Link: name, Reason: "incomplete link record"}
		}

		a, err := resolveEndpoint(g, ports, hasInventory, name, rl.ANode, rl.APort)
		if err != nil {
			return nil, nil, err
		}
		b, err := resolveEndpoint(g, ports, hasInventory, name, rl.BNode, rl.BPort)
		if err != nil {
			return nil, nil, err
		}

		if a.Node == b.Node {
			return nil, nil, &MalformedTopologyError{
				Link: name, Device: a.Node, Port: a.Name,
				Reason: "link connects the device to itself",
			}
		}

		if a.IsLAG() {
			lagSeen[a.Key()] = true
		}
		if b.IsLAG() {
			lagSeen[b.Key()] = true
		}
		if a.IsBreakout() {
			breakoutSeen[a.Key()] = true
		}
		if b.IsBreakout() {
			breakoutSeen[b.Key()] = true
		}

		l := Link{A: a, B: b, Name: name}
		if g.HasLink(a, b) {
			stats.Duplicates++
			logger.Debug("suppressed duplicate link", "link", name, "key", l.Key())
			continue
		}
		for _, ep := range []Endpoint{a, b} {
			if prev, used := g.EndpointLink(ep); used {
				return nil, nil, &MalformedTopologyError{
					Link: name, Device: ep.Node, Port: ep.Name,
					Reason: fmt.Sprintf("port already terminates link %q", prev.Name),
				}
			}
		}
		if err := g.AddLink(l); err != nil {
			return nil, nil, fmt.Errorf("add link %s: %w", name, err)
		}
	}

	for _, n := range g.IsolatedNodes() {
		logger.Debug("node has no links", "node", n.ID)
	}

	stats.Nodes = g.NodeCount()
	stats.Links = g.LinkCount()
	stats.LAGs = len(lagSeen)
	stats.Breakouts = len(breakoutSeen)
	stats.Isolated = len(g.IsolatedNodes())
	return g, stats, nil
}

// resolveEndpoint maps a raw device/port reference to a logical endpoint,
// creating the node on first sight when the export has no inventory.
func resolveEndpoint(g *Graph, ports map[string]map[string]RawPort, hasInventory bool, link, device, port string) (Endpoint, error) {
	node, known := g.Node(device)
	if !known {
		if hasInventory {
			return Endpoint{}, &MalformedTopologyError{
				Link: link, Device: device, Port: port,
				Reason: "link references unknown device",
			}
		}
		if err := g.AddNode(Node{ID: device}); err != nil {
			return Endpoint{}, fmt.Errorf("add node %s: %w", device, err)
		}
		node, _ = g.Node(device)
	}

	byID := ports[device]
	if len(byID) == 0 {
		// No declared interfaces for this device. Accept the port as a
		// plain endpoint and record it on the node in first-seen order.
		appendPort(node, port)
		return Endpoint{Node: device, Name: port, Kind: EndpointPort}, nil
	}

	p, ok := byID[port]
	if !ok {
		return Endpoint{}, &MalformedTopologyError{
			Link: link, Device: device, Port: port,
			Reason: "link references unknown port",
		}
	}
	if p.LAG != "" {
		return Endpoint{Node: device, Name: p.LAG, Kind: EndpointLAG}, nil
	}
	return Endpoint{
		Node: device, Name: port,
		Kind:           EndpointPort,
		BreakoutParent: p.BreakoutParent,
	}, nil
}

func appendPort(n *Node, port string) {
	for _, existing := range n.Ports {
		if existing == port {
			return
		}
	}
	n.Ports = append(n.Ports, port)
}
