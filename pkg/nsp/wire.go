package nsp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/topolab/pkg/topo"
)

// =============================================================================
// IETF Wire Model
// =============================================================================

// wireEnvelope is the body of a RESTCONF network query. The gateway wraps
// the network list in its module-qualified name.
type wireEnvelope struct {
	Networks []wireNetwork `json:"ietf-network:network"`
}

type wireNetwork struct {
	NetworkID string     `json:"network-id"`
	Nodes     []wireNode `json:"node"`
	Links     []wireLink `json:"ietf-network-topology:link"`
}

type wireNode struct {
	NodeID            string                 `json:"node-id"`
	L2                *wireNodeAttrs         `json:"ietf-l2-topology:l2-node-attributes"`
	TerminationPoints []wireTerminationPoint `json:"ietf-network-topology:termination-point"`
}

type wireNodeAttrs struct {
	Name          string   `json:"name"`
	MgmtAddresses []string `json:"management-address"`
}

type wireTerminationPoint struct {
	TPID string       `json:"tp-id"`
	L2   *wireTPAttrs `json:"ietf-l2-topology:l2-termination-point-attributes"`
}

type wireTPAttrs struct {
	InterfaceName string   `json:"interface-name"`
	LAG           bool     `json:"lag"`
	MemberLinkTPs []string `json:"member-link-tp"`
}

type wireLink struct {
	LinkID      string          `json:"link-id"`
	Source      *wireLinkSource `json:"source"`
	Destination *wireLinkDest   `json:"destination"`
	L2          *wireLinkAttrs  `json:"ietf-l2-topology:l2-link-attributes"`
}

type wireLinkSource struct {
	Node string `json:"source-node"`
	TP   string `json:"source-tp"`
}

type wireLinkDest struct {
	Node string `json:"dest-node"`
	TP   string `json:"dest-tp"`
}

type wireLinkAttrs struct {
	Name string `json:"name"`
}

// =============================================================================
// Parsing
// =============================================================================

// ParseTopology decodes an IETF L2 topology document into a raw topology.
// The document is the body of a RESTCONF network query as returned by
// [Session.FetchTopology]. Structural problems are reported as
// [topo.MalformedTopologyError]; reference problems such as links naming
// unknown devices or ports are left for [topo.Normalize] to reject.
func ParseTopology(data []byte) (*topo.RawTopology, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &topo.MalformedTopologyError{Reason: fmt.Sprintf("not an IETF topology document: %v", err)}
	}
	if len(env.Networks) == 0 {
		return nil, &topo.MalformedTopologyError{Reason: "response contains no network"}
	}

	nw := env.Networks[0]
	raw := &topo.RawTopology{Network: nw.NetworkID}

	nameToID := make(map[string]string, len(nw.Nodes))
	for _, n := range nw.Nodes {
		if n.NodeID == "" {
			return nil, &topo.MalformedTopologyError{Reason: "node without node-id"}
		}
		dev := topo.Device{ID: n.NodeID, Name: n.NodeID}
		if n.L2 != nil {
			if n.L2.Name != "" {
				dev.Name = n.L2.Name
			}
			if len(n.L2.MgmtAddresses) > 0 {
				dev.MgmtAddress = n.L2.MgmtAddresses[0]
			}
		}
		dev.Ports = parsePorts(n.TerminationPoints)
		nameToID[dev.Name] = dev.ID
		raw.Devices = append(raw.Devices, dev)
	}

	for _, l := range nw.Links {
		raw.Links = append(raw.Links, parseLink(l, nameToID))
	}
	return raw, nil
}

// parsePorts flattens termination points into the port inventory. A LAG
// termination point becomes a port that resolves to itself as the group,
// and its member references mark the physical ports as group members.
// Members may appear before or after the group in the export.
func parsePorts(tps []wireTerminationPoint) []topo.RawPort {
	index := make(map[string]int, len(tps))
	var ports []topo.RawPort

	upsert := func(id string) int {
		if i, ok := index[id]; ok {
			return i
		}
		index[id] = len(ports)
		ports = append(ports, topo.RawPort{ID: id, BreakoutParent: breakoutParent(id)})
		return index[id]
	}

	for _, tp := range tps {
		if tp.TPID == "" {
			continue
		}
		i := upsert(tp.TPID)
		if tp.L2 == nil || !tp.L2.LAG {
			continue
		}
		ports[i].LAG = tp.TPID
		for _, member := range tp.L2.MemberLinkTPs {
			if member == "" {
				continue
			}
			j := upsert(member)
			if ports[j].LAG == "" {
				ports[j].LAG = tp.TPID
			}
		}
	}
	return ports
}

// breakoutRe matches SR OS connector channels like "1/1/c3/2", capturing
// the parent connector "1/1/c3".
var breakoutRe = regexp.MustCompile(`^(.+/c\d+)/\d+$`)

// breakoutParent returns the parent connector for a breakout channel port
// name, or "" when the name is not a breakout channel.
func breakoutParent(port string) string {
	if m := breakoutRe.FindStringSubmatch(port); m != nil {
		return m[1]
	}
	return ""
}

// parseLink maps one wire link to a raw link record. Endpoint references
// come from the source and destination containers when present and are
// recovered from the vendor link name otherwise. Records that stay
// incomplete are passed through for [topo.Normalize] to reject.
func parseLink(l wireLink, nameToID map[string]string) topo.RawLink {
	rl := topo.RawLink{Name: l.LinkID}
	if l.L2 != nil && l.L2.Name != "" {
		rl.Name = l.L2.Name
	}

	if l.Source != nil && l.Destination != nil && l.Source.Node != "" && l.Destination.Node != "" {
		rl.ANode, rl.APort = l.Source.Node, l.Source.TP
		rl.BNode, rl.BPort = l.Destination.Node, l.Destination.TP
		return rl
	}

	// NSP fills the vendor link name as "nodeA:port--nodeB:port" even on
	// exports that strip the reference containers. The name uses display
	// names, so map them back to node ids where possible.
	if a, b, ok := strings.Cut(rl.Name, "--"); ok {
		rl.ANode, rl.APort = splitEndpoint(a, nameToID)
		rl.BNode, rl.BPort = splitEndpoint(b, nameToID)
	}
	return rl
}

func splitEndpoint(s string, nameToID map[string]string) (node, port string) {
	node, port, _ = strings.Cut(strings.TrimSpace(s), ":")
	if id, ok := nameToID[node]; ok {
		node = id
	}
	return node, port
}
