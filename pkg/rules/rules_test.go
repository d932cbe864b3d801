package rules

import (
	"testing"

	"github.com/driftforge/runweaver/pkg/errors"
)

func TestBalancedIsValid(t *testing.T) {
	if err := Balanced().Validate(); err != nil {
		t.Fatalf("Balanced() failed validation: %v", err)
	}
}

func TestBalancedShape(t *testing.T) {
	r := Balanced()
	if r.Name != "balanced" {
		t.Errorf("Name = %q, want %q", r.Name, "balanced")
	}
	if r.LayerCount() != 5 {
		t.Errorf("LayerCount() = %d, want 5", r.LayerCount())
	}
	if r.MinNodesPerLayer != 2 || r.MaxNodesPerLayer != 5 {
		t.Errorf("node bounds = [%d, %d], want [2, 5]", r.MinNodesPerLayer, r.MaxNodesPerLayer)
	}

	total := 0.0
	for _, w := range r.CategoryWeights {
		total += w
	}
	if total < 0.999 || total > 1.001 {
		t.Errorf("balanced weights sum to %g, want 1.0", total)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Rules {
		return Rules{
			Name:             "test",
			MinNodesPerLayer: 1,
			MaxNodesPerLayer: 3,
			CategoryWeights: map[Category]float64{
				CategoryCombat: 1.0,
			},
			MinConnectionsPerNode: 1,
			LayerLabels:           []string{"Entry", "End"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Rules)
		wantErr bool
	}{
		{"valid", func(r *Rules) {}, false},
		{"zero min nodes", func(r *Rules) { r.MinNodesPerLayer = 0 }, true},
		{"negative min nodes", func(r *Rules) { r.MinNodesPerLayer = -2 }, true},
		{"max below min", func(r *Rules) { r.MaxNodesPerLayer = 0 }, true},
		{"no categories", func(r *Rules) { r.CategoryWeights = nil }, true},
		{"empty category name", func(r *Rules) { r.CategoryWeights[""] = 1 }, true},
		{"negative weight", func(r *Rules) { r.CategoryWeights[CategoryShop] = -0.5 }, true},
		{"all weights zero", func(r *Rules) {
			r.CategoryWeights = map[Category]float64{CategoryCombat: 0, CategoryRest: 0}
		}, true},
		{"zero min connections", func(r *Rules) { r.MinConnectionsPerNode = 0 }, true},
		{"min connections exceeds min nodes", func(r *Rules) { r.MinConnectionsPerNode = 2 }, true},
		{"no layers", func(r *Rules) { r.LayerLabels = nil }, true},
		{"empty layer label", func(r *Rules) { r.LayerLabels = []string{"Entry", ""} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, errors.ErrCodeRuleViolation) {
					t.Errorf("error code = %q, want RULE_VIOLATION", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestCategoriesSorted(t *testing.T) {
	r := Balanced()
	cats := r.Categories()
	if len(cats) != 6 {
		t.Fatalf("Categories() returned %d entries, want 6", len(cats))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1] >= cats[i] {
			t.Fatalf("Categories() not sorted: %v", cats)
		}
	}
}

func TestWeightsAligned(t *testing.T) {
	r := Balanced()
	cats := r.Categories()
	ws := r.Weights()
	if len(ws) != len(cats) {
		t.Fatalf("Weights() length %d != Categories() length %d", len(ws), len(cats))
	}
	for i, c := range cats {
		if ws[i] != r.CategoryWeights[c] {
			t.Errorf("Weights()[%d] = %g, want %g for %s", i, ws[i], r.CategoryWeights[c], c)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Balanced()
	clone := orig.Clone()

	clone.CategoryWeights[CategoryCombat] = 99
	clone.LayerLabels[0] = "Mutated"

	if orig.CategoryWeights[CategoryCombat] == 99 {
		t.Error("mutating clone weights changed the original")
	}
	if orig.LayerLabels[0] == "Mutated" {
		t.Error("mutating clone labels changed the original")
	}
}
