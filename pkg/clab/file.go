package clab

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document to YAML bytes. Node mappings come out
// sorted by name, so output is deterministic.
func MarshalDocument(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocumentTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument deserializes YAML bytes into a document.
func UnmarshalDocument(data []byte) (*Document, error) {
	return readDocumentFrom(bytes.NewReader(data))
}

// WriteDocumentFile writes a document to a YAML file.
// The file is created with 0644 permissions.
func WriteDocumentFile(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDocumentTo(d, f)
}

// WriteDocument writes a document as YAML to an io.Writer.
// Use MarshalDocument for in-memory serialization or WriteDocumentFile for
// files.
func WriteDocument(d *Document, w io.Writer) error {
	return writeDocumentTo(d, w)
}

// ReadDocumentFile reads a YAML file and returns the decoded document.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readDocumentFrom(f)
}

// ReadDocument decodes a YAML document from an io.Reader.
// Use ReadDocumentFile for files or pass bytes.NewReader for in-memory
// data.
func ReadDocument(r io.Reader) (*Document, error) {
	return readDocumentFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeDocumentTo(d *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

func readDocumentFrom(r io.Reader) (*Document, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &d, nil
}
