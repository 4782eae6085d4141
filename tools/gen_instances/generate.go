package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/randengine"
)

var errTooFewCells = errors.New("not enough connected free cells for distinct endpoints")

// generateInstance creates a random obstacle grid and places every agent's start, pickup
// and drop on distinct cells of the largest connected region, so each leg is reachable.
func generateInstance(params core.GeneratorParams, conn core.Connectivity) (*core.InstanceFile, error) {
	rng := randengine.New(params.Seed)

	env := make(core.Environment, params.Rows)
	for r := range env {
		env[r] = make([]int, params.Cols)
		for c := range env[r] {
			if rng.PTrue(params.ObstacleDensity) {
				env[r][c] = 1
			}
		}
	}

	comps := core.Build(env, conn).ConnectedComponents()
	if len(comps) == 0 {
		return nil, fmt.Errorf("%w: grid has no free cells", errTooFewCells)
	}
	region := lo.MaxBy(comps, func(a, b []core.Cell) bool { return len(a) > len(b) })
	need := 3 * params.NumAgents
	if len(region) < need || len(region) < 2 {
		return nil, fmt.Errorf("%w: need %d, largest region has %d", errTooFewCells, need, len(region))
	}

	cells := append([]core.Cell(nil), region...)
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	agents := make([]*core.Agent, params.NumAgents)
	for i := range agents {
		agents[i] = &core.Agent{Start: cells[3*i], Pickup: cells[3*i+1], Drop: cells[3*i+2]}
	}
	inst := core.NewInstance(env, conn, agents)
	inst.Name = fmt.Sprintf("aco_%d_%dx%d_%d", params.NumAgents, params.Rows, params.Cols, params.Seed)

	f := core.NewInstanceFile(inst)
	f.Params = &params
	f.Generated = time.Now().UTC().Format(time.RFC3339)
	return f, nil
}

// scalingParams returns the scaling suite: the grid side grows with the square root of
// the agent count.
func scalingParams(seed uint64, density float64) []core.GeneratorParams {
	return lo.Map([]int{2, 4, 8, 16, 32}, func(n int, _ int) core.GeneratorParams {
		side := 8
		for side*side < 12*n {
			side++
		}
		return core.GeneratorParams{
			Seed:            seed,
			NumAgents:       n,
			Rows:            side,
			Cols:            side,
			ObstacleDensity: density,
		}
	})
}
