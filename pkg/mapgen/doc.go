// Package mapgen builds and validates the layered run topology for a
// roguelite run.
//
// # Overview
//
// A map is an ordered sequence of layers, one per boss/region, each holding
// a handful of category-tagged encounter nodes. Edges only connect nodes in
// consecutive layers, every non-terminal node keeps a minimum outgoing
// fan-out, and every node stays reachable from the entry layer. Runweaver
// produces these maps deterministically: the seed fully determines the
// structure, so two machines generating the same seed agree byte-for-byte
// on layers, nodes, categories, and connections.
//
// # Basic Usage
//
// Generate a map with [Generate] (or [GenerateBalanced] for the default
// preset), and re-check any map with [Validate]:
//
//	m, err := mapgen.GenerateBalanced("TestSeed123")
//	if err != nil {
//	    return err
//	}
//	report := mapgen.Validate(m, rules.Balanced())
//	if !report.Valid {
//	    for _, v := range report.Violations {
//	        fmt.Println(v)
//	    }
//	}
//
// # Invariants
//
// Every successfully generated map satisfies:
//
//  1. Per-layer node counts lie within the configured bounds.
//  2. Non-terminal nodes have at least the configured outgoing fan-out,
//     with no duplicate targets.
//  3. Connections resolve to nodes in the immediately following layer.
//  4. No layer contains orphans - every node past the entry layer has an
//     incoming connection.
//  5. Terminal-layer nodes have no outgoing connections.
//
// The generator's orphan repair is what establishes invariant 4; [Validate]
// re-derives all five from the map value alone, so hand-constructed (and
// deliberately broken) maps can exercise the same checks.
//
// # Error Handling
//
// Unsatisfiable rules surface as RULE_VIOLATION errors from [Generate] and
// are never silently corrected. Structural violations found by [Validate]
// are report data, not errors, because batch tooling must tally failures
// across a seed corpus rather than abort.
//
// # Concurrency
//
// Generate is a pure function of (seed, rules) with no shared mutable
// state. Each call owns its random source, so independent generations run
// in parallel without locks. Map values are immutable after construction
// and safe to share.
package mapgen
