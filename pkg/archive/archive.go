// Package archive persists generated maps and batch reports.
//
// The archive is the regression corpus for rule changes: maps generated
// from the test-seed list are stored per rules fingerprint, and batch
// reports record the aggregate each rule set produced. Comparing the latest
// report against an archived one shows exactly what a preset change did to
// the structure distribution.
//
// Two backends are provided: a Mongo store for shared deployments and a
// file store for local CLI usage. Both persist the plain data model - maps
// are reproducible from their seed, so the archive is a convenience and a
// history, never the source of truth.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/driftforge/runweaver/pkg/errors"
	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/stats"
)

// BatchReport is one archived batch run: which seeds ran under which rules,
// and what the aggregate looked like.
type BatchReport struct {
	ID        string            `json:"id" bson:"_id"`
	RulesID   string            `json:"rules_id" bson:"rules_id"`
	Preset    string            `json:"preset" bson:"preset"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	Seeds     []string          `json:"seeds" bson:"seeds"`
	Stats     *stats.BatchStats `json:"stats" bson:"stats"`
}

// NewBatchReport assembles a report with a fresh identifier.
func NewBatchReport(preset, rulesID string, seeds []string, s *stats.BatchStats) *BatchReport {
	return &BatchReport{
		ID:        uuid.NewString(),
		RulesID:   rulesID,
		Preset:    preset,
		CreatedAt: time.Now().UTC(),
		Seeds:     seeds,
		Stats:     s,
	}
}

// Store is the archive interface shared by all backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// PutMap stores a generated map, keyed by seed and rules fingerprint.
	// Storing the same (seed, rules) pair twice overwrites - the content is
	// identical by determinism, only GeneratedAt differs.
	PutMap(ctx context.Context, m *mapgen.Map) error

	// GetMap retrieves a map by seed and rules fingerprint.
	// Returns a MAP_NOT_FOUND error if absent.
	GetMap(ctx context.Context, seed, rulesID string) (*mapgen.Map, error)

	// PutBatchReport stores a batch report.
	PutBatchReport(ctx context.Context, r *BatchReport) error

	// LatestBatchReport returns the most recent report for a rules
	// fingerprint, or a NOT_FOUND error if none exists.
	LatestBatchReport(ctx context.Context, rulesID string) (*BatchReport, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// errMapNotFound builds the canonical missing-map error.
func errMapNotFound(seed, rulesID string) error {
	return errors.New(errors.ErrCodeMapNotFound, "no archived map for seed %q under rules %.12s", seed, rulesID)
}

// errReportNotFound builds the canonical missing-report error.
func errReportNotFound(rulesID string) error {
	return errors.New(errors.ErrCodeNotFound, "no batch report for rules %.12s", rulesID)
}
