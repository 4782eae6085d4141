// Package store records planner runs in MongoDB.
package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
	"github.com/elektrokombinacija/mapf-aco/internal/config"
)

var log = logrus.WithField("module", "store")

// Params is the subset of planner parameters recorded with a run.
type Params struct {
	Alpha          float64 `bson:"alpha"`
	Beta           float64 `bson:"beta"`
	Rho            float64 `bson:"rho"`
	Q              float64 `bson:"q"`
	NumAnts        int     `bson:"num_ants"`
	Iterations     int     `bson:"iterations"`
	ConflictWeight float64 `bson:"conflict_weight"`
	Connectivity   string  `bson:"connectivity"`
}

// RunRecord is one stored run.
type RunRecord struct {
	RunID         string    `bson:"_id"`
	Instance      string    `bson:"instance"`
	Solver        string    `bson:"solver"`
	Params        Params    `bson:"params"`
	Seed          int64     `bson:"seed"` // bit pattern of the uint64 seed
	Score         float64   `bson:"score"`
	Distance      float64   `bson:"distance"`
	Clean         float64   `bson:"clean"` // score without the conflict term
	Conflicts     int       `bson:"conflicts"`
	MinSeparation float64   `bson:"min_separation"`
	Feasible      bool      `bson:"feasible"`
	Seconds       float64   `bson:"time_sec"`
	Created       time.Time `bson:"created"`
}

// NewRunRecord builds a record from a plan result. A +Inf min separation (single agent)
// is stored as -1 since BSON readers rarely expect infinities.
func NewRunRecord(instance string, cfg algo.Config, res *algo.PlanResult) RunRecord {
	minSep := res.MinSeparation
	if math.IsInf(minSep, 1) {
		minSep = -1
	}
	return RunRecord{
		RunID:    res.RunID.String(),
		Instance: instance,
		Solver:   "ACO",
		Params: Params{
			Alpha:          cfg.Alpha,
			Beta:           cfg.Beta,
			Rho:            cfg.Rho,
			Q:              cfg.Q,
			NumAnts:        cfg.NumAnts,
			Iterations:     cfg.Iterations,
			ConflictWeight: cfg.ConflictWeight,
			Connectivity:   cfg.Connectivity,
		},
		Seed:          int64(cfg.Seed),
		Score:         res.Score,
		Distance:      res.Distance,
		Clean:         cfg.DistanceWeight * res.Distance,
		Conflicts:     res.Conflicts,
		MinSeparation: minSep,
		Feasible:      res.Conflicts == 0,
		Seconds:       res.Elapsed.Seconds(),
		Created:       time.Now().UTC(),
	}
}

// RunStore inserts run records into one collection.
type RunStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewRunStore connects to the configured database.
func NewRunStore(ctx context.Context, m config.Mongo) (*RunStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.URI))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	log.WithFields(logrus.Fields{"db": m.DB, "col": m.Collection}).Info("connected")
	return &RunStore{
		client: client,
		col:    client.Database(m.DB).Collection(m.Collection),
	}, nil
}

// Record inserts r.
func (s *RunStore) Record(ctx context.Context, r RunRecord) error {
	if _, err := s.col.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("store: insert %s: %w", r.RunID, err)
	}
	return nil
}

// Best returns the lowest-score feasible record for an instance, or nil if none.
func (s *RunStore) Best(ctx context.Context, instance string) (*RunRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "score", Value: 1}})
	var r RunRecord
	err := s.col.FindOne(ctx, bson.M{"instance": instance, "feasible": true}, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: best for %s: %w", instance, err)
	}
	return &r, nil
}

// Close disconnects the client.
func (s *RunStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
