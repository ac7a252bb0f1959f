package topo

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRawFileRoundTrip(t *testing.T) {
	raw := &RawTopology{
		Source:  "https://nsp.example.com",
		Network: "L2Topology",
		Devices: []Device{
			{ID: "pe1", Name: "Antwerp PE1", MgmtAddress: "10.0.0.1", Ports: []RawPort{
				{ID: "1/1/1", LAG: "lag-1"},
				{ID: "1/1/c3/1", BreakoutParent: "1/1/c3"},
			}},
			{ID: "pe2"},
		},
		Links: []RawLink{
			{Name: "pe1:1/1/1--pe2:1/1/1", ANode: "pe1", APort: "1/1/1", BNode: "pe2", BPort: "1/1/1"},
		},
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := WriteRawFile(raw, path); err != nil {
		t.Fatalf("WriteRawFile: %v", err)
	}

	got, err := ReadRawFile(path)
	if err != nil {
		t.Fatalf("ReadRawFile: %v", err)
	}

	if got.Source != raw.Source || got.Network != raw.Network {
		t.Errorf("metadata = %q/%q, want %q/%q", got.Source, got.Network, raw.Source, raw.Network)
	}
	if len(got.Devices) != 2 || len(got.Links) != 1 {
		t.Fatalf("devices/links = %d/%d, want 2/1", len(got.Devices), len(got.Links))
	}
	if got.Devices[0].Ports[0].LAG != "lag-1" {
		t.Errorf("LAG = %q, want lag-1", got.Devices[0].Ports[0].LAG)
	}
	if got.Devices[0].Ports[1].BreakoutParent != "1/1/c3" {
		t.Errorf("BreakoutParent = %q, want 1/1/c3", got.Devices[0].Ports[1].BreakoutParent)
	}
}

func TestReadRawInvalid(t *testing.T) {
	_, err := ReadRaw(strings.NewReader("{invalid json}"))
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestReadRawFileNotFound(t *testing.T) {
	_, err := ReadRawFile("nonexistent.json")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}
