package sim

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-aco/internal/algo"
	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

func c(row, col int) core.Cell { return core.Cell{Row: row, Col: col} }

func route(cells ...core.Cell) core.Route {
	r := make(core.Route, len(cells))
	for i, cell := range cells {
		r[i] = core.Step{T: i, Cell: cell}
	}
	return r
}

func openInstance(t *testing.T, rows, cols int, agents ...*core.Agent) *core.Instance {
	t.Helper()
	env := make(core.Environment, rows)
	for r := range env {
		env[r] = make([]int, cols)
	}
	inst := core.NewInstance(env, core.Conn8, agents)
	inst.Name = "test"
	require.NoError(t, inst.Validate())
	return inst
}

func TestSimulator_PickupThenDrop(t *testing.T) {
	inst := openInstance(t, 3, 5, &core.Agent{Start: c(0, 0), Pickup: c(0, 2), Drop: c(0, 4)})
	sol := &core.Solution{Routes: []core.Route{route(c(0, 1), c(0, 2), c(0, 3), c(0, 4))}}

	s, err := NewSimulator(inst, sol, Config{KeepEvents: true})
	require.NoError(t, err)
	assert.Equal(t, PhaseToPickup, s.Phase(0))

	require.True(t, s.Step())
	require.True(t, s.Step())
	assert.Equal(t, PhaseToDrop, s.Phase(0))
	assert.Equal(t, []core.Cell{c(0, 2)}, s.Positions())

	m, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Done())
	assert.False(t, s.Step())
	assert.Equal(t, PhaseDone, s.Phase(0))

	assert.Equal(t, 4, m.Ticks)
	assert.Equal(t, 1, m.Pickups)
	assert.Equal(t, 1, m.Drops)
	assert.True(t, m.Complete(1))
	assert.Equal(t, 4, m.LastCompletion)
	assert.InDelta(t, 4.0, m.AvgCompletion, 1e-12)
	assert.InDelta(t, 4.0, m.Distance, 1e-12)
	assert.Equal(t, []Event{
		{Kind: EventPickup, Tick: 2, Agent: 0, Cell: c(0, 2)},
		{Kind: EventDrop, Tick: 4, Agent: 0, Cell: c(0, 4)},
	}, m.Events)
}

func TestSimulator_PickupAtStart(t *testing.T) {
	inst := openInstance(t, 3, 3, &core.Agent{Start: c(1, 1), Pickup: c(1, 1), Drop: c(1, 1)})
	sol := &core.Solution{Routes: []core.Route{nil}}

	m, err := Simulate(context.Background(), inst, sol, Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Ticks)
	assert.Equal(t, 1, m.Pickups)
	assert.Equal(t, 1, m.Drops)
	assert.Equal(t, 0, m.LastCompletion)
}

func TestSimulator_ParkedAgentsCollide(t *testing.T) {
	// agent 1 parks at (0,2) after one move; agent 0 walks into it and on past
	inst := openInstance(t, 3, 5,
		&core.Agent{Start: c(0, 0), Pickup: c(0, 1), Drop: c(0, 3)},
		&core.Agent{Start: c(1, 2), Pickup: c(0, 2), Drop: c(0, 2)},
	)
	sol := &core.Solution{Routes: []core.Route{
		route(c(0, 1), c(0, 2), c(0, 3)),
		route(c(0, 2)),
	}}

	m, err := Simulate(context.Background(), inst, sol, Config{MinSeparation: 1.5, KeepEvents: true})
	require.NoError(t, err)

	assert.Equal(t, algo.CountConflicts(inst.Starts(), sol.Routes), m.Collisions)
	assert.Equal(t, 1, m.Collisions)
	// ticks 1 and 3 are one cell apart
	assert.Equal(t, 2, m.CloseApproaches)
	assert.Equal(t, 0.0, m.MinSeparation)
	assert.Contains(t, m.Events, Event{Kind: EventCollision, Tick: 2, Agent: 0, Other: 1, Cell: c(0, 2)})
}

func TestSimulator_AgreesWithPlanner(t *testing.T) {
	inst := openInstance(t, 7, 7,
		&core.Agent{Start: c(3, 0), Pickup: c(3, 3), Drop: c(3, 6)},
		&core.Agent{Start: c(0, 3), Pickup: c(3, 3), Drop: c(6, 3)},
		&core.Agent{Start: c(6, 6), Pickup: c(0, 0), Drop: c(6, 0)},
	)
	cfg := algo.DefaultConfig()
	cfg.NumAnts = 6
	cfg.Iterations = 5
	cfg.Seed = 7

	res, err := algo.Plan(context.Background(), inst.Env, inst.Agents, cfg)
	require.NoError(t, err)

	m, err := Simulate(context.Background(), inst, res.Solution, Config{})
	require.NoError(t, err)
	assert.True(t, m.Complete(len(inst.Agents)))
	assert.Equal(t, res.Conflicts, m.Collisions)
	assert.InDelta(t, res.Distance, m.Distance, 1e-9)
	assert.Equal(t, res.Solution.Makespan(), m.Ticks)
	assert.InDelta(t, res.MinSeparation, m.MinSeparation, 1e-9)
}

func TestSimulator_Mismatch(t *testing.T) {
	inst := openInstance(t, 2, 2, &core.Agent{Start: c(0, 0), Pickup: c(0, 1), Drop: c(1, 1)})
	_, err := NewSimulator(inst, &core.Solution{}, Config{})
	assert.Error(t, err)
	_, err = NewSimulator(inst, nil, Config{})
	assert.Error(t, err)
}

func TestSimulator_Cancelled(t *testing.T) {
	inst := openInstance(t, 1, 6, &core.Agent{Start: c(0, 0), Pickup: c(0, 2), Drop: c(0, 5)})
	sol := &core.Solution{Routes: []core.Route{route(c(0, 1), c(0, 2), c(0, 3), c(0, 4), c(0, 5))}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := Simulate(ctx, inst, sol, Config{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.Ticks)
	assert.Equal(t, 0, m.Drops)
}

func TestSimulator_ExportMetrics(t *testing.T) {
	inst := openInstance(t, 1, 3, &core.Agent{Start: c(0, 0), Pickup: c(0, 1), Drop: c(0, 2)})
	sol := &core.Solution{Routes: []core.Route{route(c(0, 1), c(0, 2))}}
	s, err := NewSimulator(inst, sol, Config{})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, s.ExportMetrics(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out["min_separation"], "a single agent has no separation")
	assert.EqualValues(t, 2, out["ticks"])
	assert.EqualValues(t, 1, out["drops"])
	assert.NotContains(t, out, "events")
}
