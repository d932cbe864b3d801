package mapgen

import (
	"fmt"

	"github.com/driftforge/runweaver/pkg/observability"
	"github.com/driftforge/runweaver/pkg/rules"
)

// Invariant names used in validation reports. These are stable strings:
// batch tooling aggregates violation counts by invariant across seeds.
const (
	InvariantNodeCountBounds = "node-count-bounds"
	InvariantMinConnections  = "min-connections"
	InvariantDanglingEdge    = "dangling-edge"
	InvariantOrphanNode      = "orphan-node"
	InvariantTerminalClosure = "terminal-closure"
	InvariantLayerCount      = "layer-count"
	InvariantNodePosition    = "node-position"
	InvariantDuplicateEdge   = "duplicate-edge"
	InvariantUnknownCategory = "unknown-category"
)

// Violation describes a single failed invariant. Violations are data, not
// errors: batch tooling tallies them across seeds and must continue past
// invalid samples.
type Violation struct {
	Invariant string `json:"invariant" bson:"invariant"`
	Layer     int    `json:"layer" bson:"layer"`
	NodeID    string `json:"node_id,omitempty" bson:"node_id,omitempty"`
	Message   string `json:"message" bson:"message"`
}

// String renders the violation for logs and CLI output.
func (v Violation) String() string {
	if v.NodeID != "" {
		return fmt.Sprintf("[%s] layer %d node %s: %s", v.Invariant, v.Layer, v.NodeID, v.Message)
	}
	return fmt.Sprintf("[%s] layer %d: %s", v.Invariant, v.Layer, v.Message)
}

// Report is the outcome of structural validation.
type Report struct {
	Valid      bool        `json:"valid" bson:"valid"`
	Violations []Violation `json:"violations,omitempty" bson:"violations,omitempty"`
}

// Validate re-checks a map's structural invariants against the rules it
// claims to satisfy. The check is pure and independent of how the map was
// built, so deliberately broken hand-constructed maps exercise the same
// paths as generator output. The map is never mutated and soft violations
// never raise - they accumulate in the report.
//
// Checked invariants:
//  1. Every layer's node count is within [MinNodesPerLayer, MaxNodesPerLayer].
//  2. Every non-terminal node has at least MinConnectionsPerNode outgoing
//     connections, with no duplicate targets.
//  3. Every connection resolves to a node in the immediately following layer.
//  4. Every node in a non-entry layer has at least one incoming connection.
//  5. Terminal-layer nodes have zero outgoing connections.
//
// Plus structural sanity: layer count matches the label sequence, positions
// are sequential, and categories are drawn from the configured taxonomy.
func Validate(m *Map, r rules.Rules) Report {
	var report Report

	add := func(invariant string, layer int, nodeID, format string, args ...any) {
		report.Violations = append(report.Violations, Violation{
			Invariant: invariant,
			Layer:     layer,
			NodeID:    nodeID,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	if len(m.Layers) != r.LayerCount() {
		add(InvariantLayerCount, 0, "",
			"map has %d layers, rules define %d", len(m.Layers), r.LayerCount())
	}

	for li := range m.Layers {
		layer := &m.Layers[li]
		terminal := li == len(m.Layers)-1

		if len(layer.Nodes) < r.MinNodesPerLayer || len(layer.Nodes) > r.MaxNodesPerLayer {
			add(InvariantNodeCountBounds, li, "",
				"node count %d outside [%d, %d]",
				len(layer.Nodes), r.MinNodesPerLayer, r.MaxNodesPerLayer)
		}

		// ID → position index of the next layer for edge resolution.
		var nextByID map[string]int
		if !terminal {
			next := &m.Layers[li+1]
			nextByID = make(map[string]int, len(next.Nodes))
			for pos, n := range next.Nodes {
				nextByID[n.ID] = pos
			}
		}
		incoming := make(map[string]int)

		for pos := range layer.Nodes {
			node := &layer.Nodes[pos]

			if node.Position != pos {
				add(InvariantNodePosition, li, node.ID,
					"position %d does not match slot %d", node.Position, pos)
			}
			if _, ok := r.CategoryWeights[node.Category]; !ok {
				add(InvariantUnknownCategory, li, node.ID,
					"category %q is not configured", node.Category)
			}

			if terminal {
				if len(node.Connections) != 0 {
					add(InvariantTerminalClosure, li, node.ID,
						"terminal node has %d outgoing connections", len(node.Connections))
				}
				continue
			}

			if len(node.Connections) < r.MinConnectionsPerNode {
				add(InvariantMinConnections, li, node.ID,
					"%d outgoing connections, need at least %d",
					len(node.Connections), r.MinConnectionsPerNode)
			}

			seen := make(map[string]bool, len(node.Connections))
			for _, target := range node.Connections {
				if seen[target] {
					add(InvariantDuplicateEdge, li, node.ID,
						"duplicate connection to %s", target)
					continue
				}
				seen[target] = true

				if _, ok := nextByID[target]; !ok {
					add(InvariantDanglingEdge, li, node.ID,
						"connection %s does not resolve in layer %d", target, li+1)
					continue
				}
				incoming[target]++
			}
		}

		// Incoming-edge coverage of the next layer (distinct from the
		// per-node outgoing minimum above).
		if !terminal {
			next := &m.Layers[li+1]
			for _, n := range next.Nodes {
				if incoming[n.ID] == 0 {
					add(InvariantOrphanNode, li+1, n.ID,
						"no incoming connection from layer %d", li)
				}
			}
		}
	}

	report.Valid = len(report.Violations) == 0
	observability.Generator().OnValidate(m.Seed, report.Valid, len(report.Violations))
	return report
}
