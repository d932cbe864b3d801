package mapgen

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftforge/runweaver/pkg/rules"
)

// nodeNamespace is the UUID namespace for deterministic node identifiers.
// Node IDs are v5 (SHA-1) UUIDs derived from seed, layer index, and position,
// so regenerating the same seed reproduces the same IDs and validation passes
// can refer to nodes stably.
var nodeNamespace = uuid.MustParse("8c9d2f41-55a0-4b7e-9c13-e2b6f0a4d837")

// Node is a single encounter within a layer.
// Connections reference node IDs in the immediately following layer and are
// ordered by target position. Terminal-layer nodes have no connections.
type Node struct {
	ID          string         `json:"id" bson:"id"`
	Position    int            `json:"position" bson:"position"`
	Category    rules.Category `json:"category" bson:"category"`
	Connections []string       `json:"connections,omitempty" bson:"connections,omitempty"`
}

// Layer is one depth level of a map: an ordered sequence of nodes plus the
// boss/region label for that depth. Index is 0-based, increasing toward the
// terminal layer.
type Layer struct {
	Index int    `json:"index" bson:"index"`
	Label string `json:"label" bson:"label"`
	Nodes []Node `json:"nodes" bson:"nodes"`
}

// Map is a generated run topology. It is constructed atomically by Generate
// and must be treated as immutable afterwards - regenerating means building
// a new value. Consumers read it through this public shape only.
type Map struct {
	// Seed is the opaque seed the map was generated from. Together with the
	// rules fingerprint it fully determines the structure.
	Seed string `json:"seed" bson:"seed"`

	// RulesID is the fingerprint of the rule set used for generation.
	RulesID string `json:"rules_id" bson:"rules_id"`

	// GeneratedAt records when the map was built. Metadata only - it has no
	// influence on structure and is ignored by structural comparisons.
	GeneratedAt time.Time `json:"generated_at" bson:"generated_at"`

	// Layers is ordered from entry (first) to terminal (last).
	Layers []Layer `json:"layers" bson:"layers"`
}

// NodeID derives the deterministic identifier for the node at the given
// layer and position of a map generated from seed.
func NodeID(seed string, layer, position int) string {
	name := []byte(seed)
	name = append(name, '/')
	name = appendInt(name, layer)
	name = append(name, '/')
	name = appendInt(name, position)
	return uuid.NewSHA1(nodeNamespace, name).String()
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(b, tmp[i:]...)
}

// LayerCount returns the number of layers.
func (m *Map) LayerCount() int { return len(m.Layers) }

// NodeCount returns the total number of nodes across all layers.
func (m *Map) NodeCount() int {
	total := 0
	for _, l := range m.Layers {
		total += len(l.Nodes)
	}
	return total
}

// EdgeCount returns the total number of connections across all layers.
func (m *Map) EdgeCount() int {
	total := 0
	for _, l := range m.Layers {
		for _, n := range l.Nodes {
			total += len(n.Connections)
		}
	}
	return total
}

// Entry returns the first layer, or nil for an empty map.
func (m *Map) Entry() *Layer {
	if len(m.Layers) == 0 {
		return nil
	}
	return &m.Layers[0]
}

// Terminal returns the last layer, or nil for an empty map.
func (m *Map) Terminal() *Layer {
	if len(m.Layers) == 0 {
		return nil
	}
	return &m.Layers[len(m.Layers)-1]
}

// Node looks up a node by ID anywhere in the map.
// Returns the containing layer index, the node, and whether it was found.
func (m *Map) Node(id string) (int, *Node, bool) {
	for li := range m.Layers {
		for ni := range m.Layers[li].Nodes {
			if m.Layers[li].Nodes[ni].ID == id {
				return li, &m.Layers[li].Nodes[ni], true
			}
		}
	}
	return 0, nil, false
}

// StructurallyEqual reports whether two maps have identical layer, node,
// category, and connection structure. Generation metadata (GeneratedAt) is
// ignored. This is the equality that seed-replay determinism guarantees.
func StructurallyEqual(a, b *Map) bool {
	if a.Seed != b.Seed || a.RulesID != b.RulesID || len(a.Layers) != len(b.Layers) {
		return false
	}
	for li := range a.Layers {
		la, lb := a.Layers[li], b.Layers[li]
		if la.Index != lb.Index || la.Label != lb.Label || len(la.Nodes) != len(lb.Nodes) {
			return false
		}
		for ni := range la.Nodes {
			na, nb := la.Nodes[ni], lb.Nodes[ni]
			if na.ID != nb.ID || na.Position != nb.Position || na.Category != nb.Category {
				return false
			}
			if len(na.Connections) != len(nb.Connections) {
				return false
			}
			for ci := range na.Connections {
				if na.Connections[ci] != nb.Connections[ci] {
					return false
				}
			}
		}
	}
	return true
}
