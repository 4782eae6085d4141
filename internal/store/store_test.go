package store

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
)

func TestNewRunRecord(t *testing.T) {
	cfg := algo.DefaultConfig()
	cfg.Seed = 12
	res := &algo.PlanResult{
		RunID:         uuid.New(),
		Score:         2012.5,
		Distance:      12.5,
		Conflicts:     2,
		MinSeparation: math.Inf(1),
		Elapsed:       1500 * time.Millisecond,
	}

	r := NewRunRecord("maze", cfg, res)
	assert.Equal(t, res.RunID.String(), r.RunID)
	assert.Equal(t, int64(12), r.Seed)
	assert.Equal(t, 30, r.Params.NumAnts)
	assert.InDelta(t, 12.5, r.Clean, 1e-9)
	assert.False(t, r.Feasible)
	assert.Equal(t, -1.0, r.MinSeparation)
	assert.InDelta(t, 1.5, r.Seconds, 1e-9)
}

func TestRunRecord_BSONFieldNames(t *testing.T) {
	r := RunRecord{RunID: "x", Instance: "maze", Seconds: 2}
	data, err := bson.Marshal(r)
	assert.NoError(t, err)

	var m bson.M
	assert.NoError(t, bson.Unmarshal(data, &m))
	assert.Equal(t, "x", m["_id"])
	assert.Equal(t, 2.0, m["time_sec"])
	assert.Contains(t, m, "params")
}
