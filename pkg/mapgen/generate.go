package mapgen

import (
	"slices"
	"time"

	"github.com/driftforge/runweaver/pkg/errors"
	"github.com/driftforge/runweaver/pkg/observability"
	"github.com/driftforge/runweaver/pkg/rng"
	"github.com/driftforge/runweaver/pkg/rules"
)

// Generate builds a map from a seed and validated rules.
//
// Generation is a pure function of (seed, rules): it consumes no randomness
// outside the seeded source, holds no shared state, and may run in parallel
// with other calls without coordination. For any rules that pass
// rules.Validate, Generate is total - it returns an error only for invalid
// seeds or invalid rules, never for an unlucky draw.
//
// Per layer, the algorithm draws a node count within bounds, assigns each
// node a category by weighted choice, wires every node of the previous layer
// to a distinct-target subset of the new layer, then repairs orphans until
// every node has at least one incoming connection.
func Generate(seed string, r rules.Rules) (m *Map, err error) {
	start := time.Now()
	observability.Generator().OnGenerateStart(seed, r.Name)
	defer func() {
		count := 0
		if m != nil {
			count = m.NodeCount()
		}
		observability.Generator().OnGenerateComplete(seed, r.Name, count, time.Since(start), err)
	}()

	if err := errors.ValidateSeed(seed); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	src := rng.New(seed)
	weights := r.Weights()
	categories := r.Categories()

	m = &Map{
		Seed:        seed,
		RulesID:     r.Fingerprint(),
		GeneratedAt: time.Now().UTC(),
		Layers:      make([]Layer, r.LayerCount()),
	}

	for i := range m.Layers {
		m.Layers[i] = buildLayer(src, seed, i, r.LayerLabels[i], categories, weights, r)
		if i > 0 {
			if err := wire(src, &m.Layers[i-1], &m.Layers[i], r.MinConnectionsPerNode); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// GenerateBalanced builds a map from a seed using the balanced preset.
func GenerateBalanced(seed string) (*Map, error) {
	return Generate(seed, rules.Balanced())
}

// buildLayer draws the node count and per-node categories for one layer.
func buildLayer(src *rng.Source, seed string, index int, label string, categories []rules.Category, weights []float64, r rules.Rules) Layer {
	count := src.IntBetween(r.MinNodesPerLayer, r.MaxNodesPerLayer)
	layer := Layer{
		Index: index,
		Label: label,
		Nodes: make([]Node, count),
	}
	for pos := range layer.Nodes {
		layer.Nodes[pos] = Node{
			ID:       NodeID(seed, index, pos),
			Position: pos,
			Category: categories[src.WeightedChoice(weights)],
		}
	}
	return layer
}

// wire connects every node in prev to minConn distinct targets in next,
// then repairs orphans in next. Connections end up sorted by target
// position for stable serialization.
func wire(src *rng.Source, prev, next *Layer, minConn int) error {
	want := max(minConn, 1)

	for i := range prev.Nodes {
		targets := src.Sample(len(next.Nodes), want)
		slices.Sort(targets)
		conns := make([]string, len(targets))
		for ci, pos := range targets {
			conns[ci] = next.Nodes[pos].ID
		}
		prev.Nodes[i].Connections = conns
	}

	return repairOrphans(src, prev, next)
}

// repairOrphans appends connections from random prev-layer nodes until every
// node in next has at least one incoming edge. Adding edges can never create
// a new orphan, so the fixed point converges within one pass per orphan; the
// explicit iteration bound is a safety valve against pathological rule
// combinations and exceeding it surfaces as a RULE_VIOLATION rather than a
// hang.
func repairOrphans(src *rng.Source, prev, next *Layer) error {
	bound := len(next.Nodes) + 1

	for iter := 0; iter < bound; iter++ {
		orphans := orphanPositions(prev, next)
		if len(orphans) == 0 {
			return nil
		}
		observability.Generator().OnOrphanRepair(next.Index, len(orphans))

		for _, pos := range orphans {
			donor := &prev.Nodes[src.IntBetween(0, len(prev.Nodes)-1)]
			donor.Connections = insertSorted(donor.Connections, next.Nodes[pos].ID, next)
		}
	}

	if len(orphanPositions(prev, next)) > 0 {
		return errors.New(errors.ErrCodeRuleViolation,
			"orphan repair did not converge for layer %d within %d passes", next.Index, bound)
	}
	return nil
}

// orphanPositions returns positions in next with zero incoming connections
// from prev, in ascending order.
func orphanPositions(prev, next *Layer) []int {
	incoming := make([]int, len(next.Nodes))
	byID := make(map[string]int, len(next.Nodes))
	for pos, n := range next.Nodes {
		byID[n.ID] = pos
	}
	for _, n := range prev.Nodes {
		for _, c := range n.Connections {
			if pos, ok := byID[c]; ok {
				incoming[pos]++
			}
		}
	}

	var orphans []int
	for pos, deg := range incoming {
		if deg == 0 {
			orphans = append(orphans, pos)
		}
	}
	return orphans
}

// insertSorted inserts id into conns keeping target-position order.
// The target was an orphan, so id cannot already be present.
func insertSorted(conns []string, id string, next *Layer) []string {
	posByID := make(map[string]int, len(next.Nodes))
	for pos, n := range next.Nodes {
		posByID[n.ID] = pos
	}
	conns = append(conns, id)
	slices.SortFunc(conns, func(a, b string) int { return posByID[a] - posByID[b] })
	return conns
}
