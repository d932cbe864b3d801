// Package mapjson is the canonical serialization format for generated maps.
//
// The format is the plain data model - seed, rules fingerprint, layers,
// nodes, connections - encoded as human-readable JSON with deterministic
// field order. It is designed for round-trip fidelity: export → re-import
// produces a structurally identical map, so a map file can stand in for
// regenerate-on-load wherever the seed alone is not enough.
package mapjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/driftforge/runweaver/pkg/mapgen"
)

// Marshal converts a map to indented JSON bytes.
// Layers and nodes keep their generation order, so output for a given map
// value is byte-for-byte stable.
func Marshal(m *mapgen.Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a map as JSON to an io.Writer.
func Write(m *mapgen.Map, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a map to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(m *mapgen.Map, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(m, f)
}

// Read decodes a JSON map from an io.Reader.
func Read(r io.Reader) (*mapgen.Map, error) {
	var m mapgen.Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &m, nil
}

// ReadFile reads a JSON file and returns the decoded map.
func ReadFile(path string) (*mapgen.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
