package archive

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/driftforge/runweaver/pkg/mapgen"
)

// Collection names within the archive database.
const (
	mapsCollection    = "maps"
	reportsCollection = "batch_reports"
)

// MongoStore is a Mongo-backed archive for shared deployments.
type MongoStore struct {
	client  *mongo.Client
	maps    *mongo.Collection
	reports *mongo.Collection
}

// MongoConfig configures the Mongo connection.
type MongoConfig struct {
	URI      string // e.g. "mongodb://localhost:27017"
	Database string // e.g. "runweaver"
}

// mapDocument wraps a map with its compound archive key.
type mapDocument struct {
	Seed    string      `bson:"seed"`
	RulesID string      `bson:"rules_id"`
	Map     *mapgen.Map `bson:"map"`
}

// NewMongoStore connects to Mongo and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo %s: %w", cfg.URI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo %s: %w", cfg.URI, err)
	}

	db := client.Database(cfg.Database)
	return &MongoStore{
		client:  client,
		maps:    db.Collection(mapsCollection),
		reports: db.Collection(reportsCollection),
	}, nil
}

// PutMap upserts a map keyed by (seed, rules_id).
func (s *MongoStore) PutMap(ctx context.Context, m *mapgen.Map) error {
	filter := bson.M{"seed": m.Seed, "rules_id": m.RulesID}
	doc := mapDocument{Seed: m.Seed, RulesID: m.RulesID, Map: m}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.maps.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("store map %s: %w", m.Seed, err)
	}
	return nil
}

// GetMap retrieves a map by seed and rules fingerprint.
func (s *MongoStore) GetMap(ctx context.Context, seed, rulesID string) (*mapgen.Map, error) {
	filter := bson.M{"seed": seed, "rules_id": rulesID}
	var doc mapDocument
	err := s.maps.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errMapNotFound(seed, rulesID)
	}
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", seed, err)
	}
	return doc.Map, nil
}

// PutBatchReport stores a batch report.
func (s *MongoStore) PutBatchReport(ctx context.Context, r *BatchReport) error {
	if _, err := s.reports.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("store batch report %s: %w", r.ID, err)
	}
	return nil
}

// LatestBatchReport returns the newest report for a rules fingerprint.
func (s *MongoStore) LatestBatchReport(ctx context.Context, rulesID string) (*BatchReport, error) {
	filter := bson.M{"rules_id": rulesID}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var r BatchReport
	err := s.reports.FindOne(ctx, filter, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, errReportNotFound(rulesID)
	}
	if err != nil {
		return nil, fmt.Errorf("load batch report: %w", err)
	}
	return &r, nil
}

// Close disconnects from Mongo.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
