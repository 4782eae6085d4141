// Package algo implements the multi-agent pickup/drop planners.
package algo

import (
	"context"
	"math"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
)

// Solver is the interface for pickup/drop planners.
type Solver interface {
	// Solve plans a route for every agent of the instance. A structurally infeasible
	// instance returns an error wrapping ErrStructuralInfeasibility; a plan with
	// conflicts is still a solution.
	Solve(ctx context.Context, inst *core.Instance) (*core.Solution, error)

	// Name returns the algorithm name.
	Name() string
}

// Conflict is two agents on the same cell at the same timestep.
type Conflict struct {
	Agent1, Agent2 core.AgentID
	Cell           core.Cell
	Time           int
}

// horizon returns the number of timesteps to compare: the longest route.
func horizon(routes []core.Route) int {
	h := 0
	for _, r := range routes {
		if len(r) > h {
			h = len(r)
		}
	}
	return h
}

// pairwise visits every agent pair at every timestep up to the longest route. Agents
// whose route has ended stay parked at their last cell. With all routes empty the start
// cells are compared once, at t = 0.
func pairwise(starts []core.Cell, routes []core.Route, minT int, fn func(t, i, j int, a, b core.Cell)) {
	h := horizon(routes)
	if h < minT {
		h = minT
	}
	pos := make([]core.Cell, len(routes))
	for t := 0; t < h; t++ {
		for i, r := range routes {
			pos[i] = r.At(starts[i], t)
		}
		for i := 0; i < len(pos); i++ {
			for j := i + 1; j < len(pos); j++ {
				fn(t, i, j, pos[i], pos[j])
			}
		}
	}
}

// FindAllConflicts returns every colliding (pair, timestep), ordered by time then pair.
// starts[i] is the start cell of routes[i].
func FindAllConflicts(starts []core.Cell, routes []core.Route) []Conflict {
	var out []Conflict
	pairwise(starts, routes, 0, func(t, i, j int, a, b core.Cell) {
		if a == b {
			out = append(out, Conflict{
				Agent1: core.AgentID(i),
				Agent2: core.AgentID(j),
				Cell:   a,
				Time:   t,
			})
		}
	})
	return out
}

// CountConflicts returns the number of colliding (pair, timestep) events.
func CountConflicts(starts []core.Cell, routes []core.Route) int {
	n := 0
	pairwise(starts, routes, 0, func(_, _, _ int, a, b core.Cell) {
		if a == b {
			n++
		}
	})
	return n
}

// MinSeparation returns the smallest Euclidean distance between any two agents over all
// compared timesteps, or +Inf with fewer than two agents.
func MinSeparation(starts []core.Cell, routes []core.Route) float64 {
	best := math.Inf(1)
	pairwise(starts, routes, 1, func(_, _, _ int, a, b core.Cell) {
		if d := a.Dist(b); d < best {
			best = d
		}
	})
	return best
}
