package topo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Raw Topology - Typed Ingestion Model
// =============================================================================

// RawTopology is the typed form of a management platform topology export,
// before normalization. It carries the records as reported: links may appear
// once per direction, LAG members are individual ports, and devices may have
// no links at all. [Normalize] turns it into a canonical [Graph].
//
// The format is also the snapshot format: fetched topologies are persisted
// as RawTopology documents so later runs can normalize and lay out the same
// input without talking to the platform again.
type RawTopology struct {
	Source  string    `json:"source,omitempty" bson:"source,omitempty"`   // server URL or file the export came from
	Network string    `json:"network,omitempty" bson:"network,omitempty"` // network name on the platform, e.g. "L2Topology"
	Devices []Device  `json:"devices,omitempty" bson:"devices,omitempty"`
	Links   []RawLink `json:"links" bson:"links"`
}

// Device is an inventory entry: one network element and its interfaces.
type Device struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name,omitempty" bson:"name,omitempty"`
	MgmtAddress string    `json:"mgmt_address,omitempty" bson:"mgmt_address,omitempty"`
	Ports       []RawPort `json:"ports,omitempty" bson:"ports,omitempty"`
}

// RawPort is a physical interface as reported by the platform. LAG and
// BreakoutParent drive endpoint resolution during normalization: a port with
// a LAG collapses into the group endpoint, a breakout channel keeps its own
// identity but records the parent connector.
type RawPort struct {
	ID             string `json:"id" bson:"id"`
	LAG            string `json:"lag,omitempty" bson:"lag,omitempty"`
	BreakoutParent string `json:"breakout_parent,omitempty" bson:"breakout_parent,omitempty"`
}

// RawLink is one reported adjacency between two device ports. Bidirectional
// exports report each adjacency twice with A and B swapped.
type RawLink struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"` // vendor link name, diagnostic
	ANode string `json:"a_node" bson:"a_node"`
	APort string `json:"a_port" bson:"a_port"`
	BNode string `json:"b_node" bson:"b_node"`
	BPort string `json:"b_port" bson:"b_port"`
}

// =============================================================================
// Raw Topology Serialization API
// =============================================================================

// MarshalRaw converts a raw topology to pretty-printed JSON bytes.
func MarshalRaw(t *RawTopology) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeRawTo(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalRaw deserializes JSON bytes into a raw topology.
func UnmarshalRaw(data []byte) (*RawTopology, error) {
	return readRawFrom(bytes.NewReader(data))
}

// WriteRawFile writes a raw topology to a JSON file.
// The file is created with 0644 permissions.
func WriteRawFile(t *RawTopology, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeRawTo(t, f)
}

// WriteRaw writes a raw topology as JSON to an io.Writer.
// Use MarshalRaw for in-memory serialization or WriteRawFile for files.
func WriteRaw(t *RawTopology, w io.Writer) error {
	return writeRawTo(t, w)
}

// ReadRawFile reads a JSON file and returns the decoded raw topology.
func ReadRawFile(path string) (*RawTopology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readRawFrom(f)
}

// ReadRaw decodes a JSON raw topology from an io.Reader.
// Use ReadRawFile for files or pass bytes.NewReader for in-memory data.
func ReadRaw(r io.Reader) (*RawTopology, error) {
	return readRawFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeRawTo(t *RawTopology, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readRawFrom(r io.Reader) (*RawTopology, error) {
	var t RawTopology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &t, nil
}
