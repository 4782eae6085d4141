package algo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// openGrid creates a rows x cols environment with no obstacles.
func openGrid(rows, cols int) core.Environment {
	env := make(core.Environment, rows)
	for r := range env {
		env[r] = make([]int, cols)
	}
	return env
}

func mustParse(t *testing.T, rows ...string) core.Environment {
	t.Helper()
	env, err := core.ParseGrid(rows)
	require.NoError(t, err)
	return env
}

func agent(start, pickup, drop core.Cell) *core.Agent {
	return &core.Agent{Start: start, Pickup: pickup, Drop: drop}
}

// crossingAgents returns two agents whose shortest trips meet in the middle of a 7x7 grid.
func crossingAgents() []*core.Agent {
	return []*core.Agent{
		agent(core.Cell{Row: 3, Col: 0}, core.Cell{Row: 3, Col: 3}, core.Cell{Row: 3, Col: 6}),
		agent(core.Cell{Row: 0, Col: 3}, core.Cell{Row: 3, Col: 3}, core.Cell{Row: 6, Col: 3}),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NumAnts = 8
	cfg.Iterations = 10
	cfg.Seed = 42
	return cfg
}

// requireValidRoute checks adjacency, contiguous timesteps from 0 and the leg order.
func requireValidRoute(t *testing.T, g *core.GridGraph, a *core.Agent, r core.Route) {
	t.Helper()
	prev := a.Start
	pickedUp := a.Start == a.Pickup
	for i, s := range r {
		require.Equal(t, i, s.T, "timestep %d", i)
		require.True(t, g.HasEdge(prev, s.Cell), "step %d: %v -> %v is not an edge", i, prev, s.Cell)
		if s.Cell == a.Pickup {
			pickedUp = true
		}
		prev = s.Cell
	}
	require.True(t, pickedUp, "pickup %v never visited", a.Pickup)
	require.Equal(t, a.Drop, r.Last(a.Start))
}
