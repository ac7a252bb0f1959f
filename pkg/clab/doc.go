// Package clab reads and writes containerlab topology files.
//
// # Overview
//
// The lab topology file is the system's canonical on-disk exchange format:
// one YAML document declaring every node and every point-to-point link of a
// topology. Exporting a canonical graph produces a file containerlab can
// deploy directly; importing one re-derives the graph, which is how the
// standalone layout flow works on hosts with no reachable management
// platform.
//
// # Document Shape
//
// Nodes are a name-to-spec mapping, links a list of endpoint pairs in
// "<node>:<interface>" form:
//
//	topology:
//	  nodes:
//	    pe1:
//	      kind: nokia-sros
//	      image: containerlab/vr-sros
//	      mgmt-ipv4: 10.0.0.1
//	  links:
//	    - endpoints: ["pe1:1/1/1", "pe2:1/1/1"]
//
// Display names and roles have no native slot in the schema, so they ride
// along as node labels and survive a round trip.
//
// # Determinism
//
// YAML marshaling sorts the node mapping by name and links keep their graph
// order, so exporting the same graph twice produces identical bytes.
// [Import] walks node names in sorted order for the same reason.
package clab
