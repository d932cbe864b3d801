package mapjson

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/driftforge/runweaver/pkg/mapgen"
)

func TestRoundTrip(t *testing.T) {
	m, err := mapgen.GenerateBalanced("json-roundtrip")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	back, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if !mapgen.StructurallyEqual(m, back) {
		t.Error("round trip changed the map structure")
	}
}

func TestMarshalStable(t *testing.T) {
	m, err := mapgen.GenerateBalanced("json-stable")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	a, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two marshals of the same map differ")
	}
}

func TestMarshalReadable(t *testing.T) {
	m, err := mapgen.GenerateBalanced("json-shape")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	for _, field := range []string{`"seed"`, `"rules_id"`, `"layers"`, `"nodes"`, `"category"`} {
		if !strings.Contains(s, field) {
			t.Errorf("output missing field %s", field)
		}
	}
	if !strings.Contains(s, "\n  ") {
		t.Error("output is not indented")
	}
}

func TestFileRoundTrip(t *testing.T) {
	m, err := mapgen.GenerateBalanced("json-file")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "map.json")
	if err := WriteFile(m, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !mapgen.StructurallyEqual(m, back) {
		t.Error("file round trip changed the map structure")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile() of missing file succeeded")
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader("{not json")); err == nil {
		t.Error("Read() of malformed input succeeded")
	}
}
