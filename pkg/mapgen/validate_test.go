package mapgen

import (
	"testing"
	"time"

	"github.com/driftforge/runweaver/pkg/rules"
)

func handRules() rules.Rules {
	return rules.Rules{
		Name:             "hand",
		MinNodesPerLayer: 1,
		MaxNodesPerLayer: 3,
		CategoryWeights: map[rules.Category]float64{
			rules.CategoryCombat: 0.8,
			rules.CategoryRest:   0.2,
		},
		MinConnectionsPerNode: 1,
		LayerLabels:           []string{"Entry", "Mid", "End"},
	}
}

// handMap builds a small valid map by hand so validation tests exercise the
// checker independently of the generator.
func handMap() *Map {
	const seed = "hand"
	id := func(layer, pos int) string { return NodeID(seed, layer, pos) }

	return &Map{
		Seed:        seed,
		RulesID:     handRules().Fingerprint(),
		GeneratedAt: time.Now().UTC(),
		Layers: []Layer{
			{Index: 0, Label: "Entry", Nodes: []Node{
				{ID: id(0, 0), Position: 0, Category: rules.CategoryCombat, Connections: []string{id(1, 0)}},
				{ID: id(0, 1), Position: 1, Category: rules.CategoryRest, Connections: []string{id(1, 1)}},
			}},
			{Index: 1, Label: "Mid", Nodes: []Node{
				{ID: id(1, 0), Position: 0, Category: rules.CategoryCombat, Connections: []string{id(2, 0)}},
				{ID: id(1, 1), Position: 1, Category: rules.CategoryCombat, Connections: []string{id(2, 0)}},
			}},
			{Index: 2, Label: "End", Nodes: []Node{
				{ID: id(2, 0), Position: 0, Category: rules.CategoryCombat},
			}},
		},
	}
}

func hasInvariant(report Report, invariant string) bool {
	for _, v := range report.Violations {
		if v.Invariant == invariant {
			return true
		}
	}
	return false
}

func TestValidateCleanMap(t *testing.T) {
	report := Validate(handMap(), handRules())
	if !report.Valid {
		for _, v := range report.Violations {
			t.Errorf("unexpected violation: %s", v)
		}
	}
	if len(report.Violations) != 0 {
		t.Errorf("Valid report carries %d violations", len(report.Violations))
	}
}

func TestValidateDetectsViolations(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Map)
		invariant string
	}{
		{
			"node count above max",
			func(m *Map) {
				l := &m.Layers[2]
				for i := 1; i < 4; i++ {
					l.Nodes = append(l.Nodes, Node{ID: NodeID("hand", 2, i), Position: i, Category: rules.CategoryCombat})
				}
			},
			InvariantNodeCountBounds,
		},
		{
			"missing outgoing connections",
			func(m *Map) { m.Layers[0].Nodes[0].Connections = nil },
			InvariantMinConnections,
		},
		{
			"dangling connection",
			func(m *Map) { m.Layers[0].Nodes[0].Connections = []string{"no-such-node"} },
			InvariantDanglingEdge,
		},
		{
			"orphaned node",
			func(m *Map) {
				// Point both entry nodes at the same target; Mid position 1
				// loses its only incoming edge.
				target := m.Layers[1].Nodes[0].ID
				m.Layers[0].Nodes[0].Connections = []string{target}
				m.Layers[0].Nodes[1].Connections = []string{target}
			},
			InvariantOrphanNode,
		},
		{
			"terminal node with outgoing connection",
			func(m *Map) { m.Layers[2].Nodes[0].Connections = []string{"anywhere"} },
			InvariantTerminalClosure,
		},
		{
			"layer count mismatch",
			func(m *Map) { m.Layers = m.Layers[:2] },
			InvariantLayerCount,
		},
		{
			"position mismatch",
			func(m *Map) { m.Layers[1].Nodes[1].Position = 7 },
			InvariantNodePosition,
		},
		{
			"duplicate edge",
			func(m *Map) {
				target := m.Layers[1].Nodes[0].ID
				m.Layers[0].Nodes[0].Connections = []string{target, target}
			},
			InvariantDuplicateEdge,
		},
		{
			"unknown category",
			func(m *Map) { m.Layers[0].Nodes[0].Category = "volcano" },
			InvariantUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := handMap()
			tt.mutate(m)

			report := Validate(m, handRules())
			if report.Valid {
				t.Fatal("Validate() reported a broken map as valid")
			}
			if !hasInvariant(report, tt.invariant) {
				t.Errorf("violations %v missing invariant %q", report.Violations, tt.invariant)
			}
		})
	}
}

func TestValidateAccumulatesViolations(t *testing.T) {
	m := handMap()
	m.Layers[0].Nodes[0].Connections = nil     // min-connections
	m.Layers[0].Nodes[1].Category = "volcano"  // unknown-category
	m.Layers[2].Nodes[0].Position = 4          // node-position

	report := Validate(m, handRules())
	if len(report.Violations) < 3 {
		t.Errorf("got %d violations, want at least 3", len(report.Violations))
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	m := handMap()
	before := structureSignature(m)
	_ = Validate(m, handRules())
	if structureSignature(m) != before {
		t.Error("Validate() mutated the map")
	}
}

func TestViolationString(t *testing.T) {
	withNode := Violation{Invariant: InvariantOrphanNode, Layer: 2, NodeID: "abc", Message: "no incoming"}
	if got := withNode.String(); got != "[orphan-node] layer 2 node abc: no incoming" {
		t.Errorf("String() = %q", got)
	}

	withoutNode := Violation{Invariant: InvariantLayerCount, Layer: 0, Message: "mismatch"}
	if got := withoutNode.String(); got != "[layer-count] layer 0: mismatch" {
		t.Errorf("String() = %q", got)
	}
}
