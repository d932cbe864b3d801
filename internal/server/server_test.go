package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/rules"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(log.New(io.Discard), nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]any{"seed": "api-test"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var m mapgen.Map
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode map: %v", err)
	}
	if m.Seed != "api-test" {
		t.Errorf("map seed = %q, want %q", m.Seed, "api-test")
	}
	if m.LayerCount() != rules.Balanced().LayerCount() {
		t.Errorf("layer count = %d, want %d", m.LayerCount(), rules.Balanced().LayerCount())
	}
}

func TestGenerateEndpointDeterministic(t *testing.T) {
	ts := newTestServer(t)

	fetch := func() *mapgen.Map {
		resp := postJSON(t, ts.URL+"/api/generate", map[string]any{"seed": "replay"})
		defer resp.Body.Close()
		var m mapgen.Map
		if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
			t.Fatal(err)
		}
		return &m
	}

	if !mapgen.StructurallyEqual(fetch(), fetch()) {
		t.Error("two requests for the same seed returned different maps")
	}
}

func TestGenerateEndpointCustomRules(t *testing.T) {
	ts := newTestServer(t)

	r := rules.Balanced()
	r.LayerLabels = []string{"Only Layer", "Final Layer"}

	resp := postJSON(t, ts.URL+"/api/generate", map[string]any{"seed": "custom", "rules": r})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var m mapgen.Map
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m.LayerCount() != 2 {
		t.Errorf("layer count = %d, want 2", m.LayerCount())
	}
}

func TestGenerateEndpointErrors(t *testing.T) {
	ts := newTestServer(t)

	t.Run("invalid seed", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/generate", map[string]any{"seed": ""})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		if e := decodeError(t, resp); e.Code != "INVALID_SEED" {
			t.Errorf("error code = %q, want INVALID_SEED", e.Code)
		}
	})

	t.Run("unsatisfiable rules", func(t *testing.T) {
		r := rules.Balanced()
		r.MinConnectionsPerNode = 10
		resp := postJSON(t, ts.URL+"/api/generate", map[string]any{"seed": "x", "rules": r})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
		if e := decodeError(t, resp); e.Code != "RULE_VIOLATION" {
			t.Errorf("error code = %q, want RULE_VIOLATION", e.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/generate", "application/json", bytes.NewReader([]byte("{not json")))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestValidateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	m, err := mapgen.GenerateBalanced("validate-api")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid map", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/validate", map[string]any{"map": m})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var report mapgen.Report
		if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
			t.Fatal(err)
		}
		if !report.Valid {
			t.Errorf("report invalid: %v", report.Violations)
		}
	})

	t.Run("broken map is still 200", func(t *testing.T) {
		broken := *m
		broken.Layers = broken.Layers[:2]

		resp := postJSON(t, ts.URL+"/api/validate", map[string]any{"map": &broken})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200 (violations are data)", resp.StatusCode)
		}
		var report mapgen.Report
		if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
			t.Fatal(err)
		}
		if report.Valid {
			t.Error("truncated map reported valid")
		}
	})

	t.Run("missing map", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/validate", map[string]any{})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestBatchEndpoint(t *testing.T) {
	ts := newTestServer(t)

	t.Run("aggregates", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/batch", map[string]any{
			"seeds": []string{"one", "two", "three"},
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var agg struct {
			TotalMapsGenerated    int `json:"total_maps_generated"`
			SuccessfulGenerations int `json:"successful_generations"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
			t.Fatal(err)
		}
		if agg.TotalMapsGenerated != 3 || agg.SuccessfulGenerations != 3 {
			t.Errorf("aggregate = %d/%d, want 3/3", agg.TotalMapsGenerated, agg.SuccessfulGenerations)
		}
	})

	t.Run("empty seeds", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/batch", map[string]any{"seeds": []string{}})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}
