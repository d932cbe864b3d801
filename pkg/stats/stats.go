// Package stats runs the generator across a batch of seeds and aggregates
// structural metrics.
//
// Batches are the regression gate for rule changes: before accepting a new
// preset, run it over the fixed test-seed corpus and compare the aggregate
// against the previous run. A generation failure (unsatisfiable rules) or a
// validation failure is counted, never fatal - the batch always completes.
package stats

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/observability"
	"github.com/driftforge/runweaver/pkg/rules"
)

// DefaultWorkers bounds batch parallelism when the caller does not choose.
// Generation is CPU-bound and cheap, so a small pool is plenty.
const DefaultWorkers = 8

// BatchStats is the commutative aggregate over a seed batch. All fields are
// plain counters and histogram buckets, so partial results can be merged in
// any completion order without changing the outcome.
type BatchStats struct {
	// TotalMapsGenerated is the number of seeds processed.
	TotalMapsGenerated int `json:"total_maps_generated" bson:"total_maps_generated"`

	// SuccessfulGenerations counts seeds whose map generated and validated
	// cleanly.
	SuccessfulGenerations int `json:"successful_generations" bson:"successful_generations"`

	// GenerationFailures counts seeds where Generate itself returned an
	// error (rule violations, bad seeds).
	GenerationFailures int `json:"generation_failures" bson:"generation_failures"`

	// ValidationFailures counts seeds whose map generated but failed
	// structural validation.
	ValidationFailures int `json:"validation_failures" bson:"validation_failures"`

	// NodeCountHistogram maps per-layer node count to occurrence count
	// across all layers of all generated maps.
	NodeCountHistogram map[int]int `json:"node_count_histogram" bson:"node_count_histogram"`

	// ViolationCounts tallies validation violations by invariant name.
	ViolationCounts map[string]int `json:"violation_counts" bson:"violation_counts"`

	// TotalNodes and TotalEdges sum over all successfully generated maps.
	TotalNodes int `json:"total_nodes" bson:"total_nodes"`
	TotalEdges int `json:"total_edges" bson:"total_edges"`
}

// NewBatchStats returns an empty aggregate with initialized buckets.
func NewBatchStats() *BatchStats {
	return &BatchStats{
		NodeCountHistogram: make(map[int]int),
		ViolationCounts:    make(map[string]int),
	}
}

// Merge folds other into s. Merge is commutative and associative - counter
// and bucket addition only - so worker completion order never affects the
// final aggregate.
func (s *BatchStats) Merge(other *BatchStats) {
	s.TotalMapsGenerated += other.TotalMapsGenerated
	s.SuccessfulGenerations += other.SuccessfulGenerations
	s.GenerationFailures += other.GenerationFailures
	s.ValidationFailures += other.ValidationFailures
	s.TotalNodes += other.TotalNodes
	s.TotalEdges += other.TotalEdges
	for k, v := range other.NodeCountHistogram {
		s.NodeCountHistogram[k] += v
	}
	for k, v := range other.ViolationCounts {
		s.ViolationCounts[k] += v
	}
}

// SuccessRate returns the fraction of seeds that generated and validated
// cleanly, or 0 for an empty batch.
func (s *BatchStats) SuccessRate() float64 {
	if s.TotalMapsGenerated == 0 {
		return 0
	}
	return float64(s.SuccessfulGenerations) / float64(s.TotalMapsGenerated)
}

// record folds one seed's outcome into the aggregate.
func (s *BatchStats) record(m *mapgen.Map, report mapgen.Report, genErr error) {
	s.TotalMapsGenerated++

	if genErr != nil {
		s.GenerationFailures++
		return
	}

	for _, layer := range m.Layers {
		s.NodeCountHistogram[len(layer.Nodes)]++
	}
	s.TotalNodes += m.NodeCount()
	s.TotalEdges += m.EdgeCount()

	if report.Valid {
		s.SuccessfulGenerations++
		return
	}
	s.ValidationFailures++
	for _, v := range report.Violations {
		s.ViolationCounts[v.Invariant]++
	}
}

// Options configures a batch run.
type Options struct {
	// Workers bounds the worker pool. Zero means DefaultWorkers.
	Workers int
}

// RunBatch generates and validates every seed and folds the outcomes into
// one aggregate. Seeds fan out across a bounded worker pool; each worker
// owns its random source, so there is no coordination beyond the fold.
//
// Per-seed failures are recorded, not returned. The only error paths are
// context cancellation and invalid rules (checked once up front so the
// batch does not fail the same way len(seeds) times).
func RunBatch(ctx context.Context, seeds []string, r rules.Rules, opts Options) (*BatchStats, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	start := time.Now()
	observability.Batch().OnBatchStart(ctx, len(seeds))

	agg := NewBatchStats()
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, seed := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			m, genErr := mapgen.Generate(seed, r)
			var report mapgen.Report
			if genErr == nil {
				report = mapgen.Validate(m, r)
			}

			mu.Lock()
			agg.record(m, report, genErr)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failures := agg.GenerationFailures + agg.ValidationFailures
	observability.Batch().OnBatchComplete(ctx, len(seeds), failures, time.Since(start))
	return agg, nil
}
