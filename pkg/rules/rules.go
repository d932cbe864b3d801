// Package rules defines the generation rules that bound map construction.
//
// A Rules value is an immutable description of what a legal map looks like:
// how many nodes each layer may hold, how encounter categories are weighted,
// how many outgoing connections every non-terminal node must have, and the
// boss-name sequence that labels layers (and drives the layer count).
//
// Rules are validated on construction and never silently clamped - an
// unsatisfiable configuration is rejected with a RULE_VIOLATION error so
// the generator can stay total for any rules that passed validation.
package rules

import (
	"maps"
	"slices"

	"github.com/driftforge/runweaver/pkg/errors"
)

// Category is an encounter category assigned to generated nodes.
// The taxonomy is configurable: any non-empty string is a legal category,
// and presets choose which ones they weight.
type Category string

// Categories used by the shipped presets.
const (
	CategoryCombat   Category = "combat"
	CategoryElite    Category = "elite"
	CategoryEvent    Category = "event"
	CategoryShop     Category = "shop"
	CategoryRest     Category = "rest"
	CategoryTreasure Category = "treasure"
)

// Rules describes the bounds and weights for map generation.
// Treat values as immutable once validated; the generator never mutates
// them and shares them freely across parallel generations.
type Rules struct {
	// Name identifies the rule set (e.g. "balanced") and is part of the
	// fingerprint used for caching and map metadata.
	Name string `toml:"name"`

	// MinNodesPerLayer and MaxNodesPerLayer bound the node count drawn for
	// every layer. min >= 1, max >= min.
	MinNodesPerLayer int `toml:"min_nodes_per_layer"`
	MaxNodesPerLayer int `toml:"max_nodes_per_layer"`

	// CategoryWeights maps encounter categories to non-negative selection
	// weights. At least one weight must be positive.
	CategoryWeights map[Category]float64 `toml:"category_weights"`

	// MinConnectionsPerNode is the minimum outgoing edge count for every
	// non-terminal node. Terminal-layer nodes have zero outgoing edges by
	// definition. Duplicate edges to the same target are disallowed, so
	// this must not exceed MinNodesPerLayer.
	MinConnectionsPerNode int `toml:"min_connections_per_node"`

	// LayerLabels is the boss/region name per layer depth. Its length is
	// the layer count.
	LayerLabels []string `toml:"layer_labels"`
}

// LayerCount returns the number of layers the rules produce.
func (r Rules) LayerCount() int { return len(r.LayerLabels) }

// Validate checks that the rules are internally consistent and structurally
// satisfiable. It returns a RULE_VIOLATION error for the first problem found
// and never adjusts values.
func (r Rules) Validate() error {
	if r.MinNodesPerLayer < 1 {
		return errors.New(errors.ErrCodeRuleViolation,
			"min_nodes_per_layer must be >= 1, got %d", r.MinNodesPerLayer)
	}
	if r.MaxNodesPerLayer < r.MinNodesPerLayer {
		return errors.New(errors.ErrCodeRuleViolation,
			"max_nodes_per_layer (%d) < min_nodes_per_layer (%d)",
			r.MaxNodesPerLayer, r.MinNodesPerLayer)
	}
	if len(r.CategoryWeights) == 0 {
		return errors.New(errors.ErrCodeRuleViolation, "category_weights is empty")
	}
	positive := false
	for cat, w := range r.CategoryWeights {
		if cat == "" {
			return errors.New(errors.ErrCodeRuleViolation, "category name cannot be empty")
		}
		if w < 0 {
			return errors.New(errors.ErrCodeRuleViolation,
				"category %q has negative weight %g", cat, w)
		}
		if w > 0 {
			positive = true
		}
	}
	if !positive {
		return errors.New(errors.ErrCodeRuleViolation, "all category weights are zero")
	}
	if r.MinConnectionsPerNode < 1 {
		return errors.New(errors.ErrCodeRuleViolation,
			"min_connections_per_node must be >= 1, got %d", r.MinConnectionsPerNode)
	}
	// A node cannot demand more distinct targets than the smallest possible
	// next layer provides. Checked here once so generation never fails
	// mid-build on a layer that happened to draw the minimum.
	if r.MinConnectionsPerNode > r.MinNodesPerLayer {
		return errors.New(errors.ErrCodeRuleViolation,
			"min_connections_per_node (%d) exceeds min_nodes_per_layer (%d) and duplicate edges are disallowed",
			r.MinConnectionsPerNode, r.MinNodesPerLayer)
	}
	if len(r.LayerLabels) == 0 {
		return errors.New(errors.ErrCodeRuleViolation, "layer_labels is empty")
	}
	for i, label := range r.LayerLabels {
		if label == "" {
			return errors.New(errors.ErrCodeRuleViolation, "layer label %d is empty", i)
		}
	}
	return nil
}

// Categories returns the configured categories in sorted order.
// Map iteration order is randomized in Go, so every consumer that turns
// CategoryWeights into an indexed sequence must go through this accessor
// to keep the random-draw sequence deterministic.
func (r Rules) Categories() []Category {
	cats := slices.Collect(maps.Keys(r.CategoryWeights))
	slices.Sort(cats)
	return cats
}

// Weights returns the weight per category, aligned with Categories().
func (r Rules) Weights() []float64 {
	cats := r.Categories()
	ws := make([]float64, len(cats))
	for i, c := range cats {
		ws[i] = r.CategoryWeights[c]
	}
	return ws
}

// Clone returns a deep copy. Useful when a caller wants to derive a
// modified rule set without touching a shared value.
func (r Rules) Clone() Rules {
	out := r
	out.CategoryWeights = maps.Clone(r.CategoryWeights)
	out.LayerLabels = slices.Clone(r.LayerLabels)
	return out
}

// Balanced returns the documented default preset: five layers, small
// fan-out, combat-leaning category mix. The exact values are part of the
// public contract - regression corpora are generated against them.
func Balanced() Rules {
	return Rules{
		Name:             "balanced",
		MinNodesPerLayer: 2,
		MaxNodesPerLayer: 5,
		CategoryWeights: map[Category]float64{
			CategoryCombat:   0.45,
			CategoryElite:    0.10,
			CategoryEvent:    0.15,
			CategoryShop:     0.10,
			CategoryRest:     0.10,
			CategoryTreasure: 0.10,
		},
		MinConnectionsPerNode: 1,
		LayerLabels: []string{
			"The Warrens",
			"Fungal Depths",
			"The Foundry",
			"Ashen Court",
			"The Starless Gate",
		},
	}
}
