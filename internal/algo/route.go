package algo

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/mapf-aco/internal/core"
	"github.com/elektrokombinacija/mapf-aco/internal/randengine"
)

// RouteBuilder constructs routes one probabilistic step at a time, biased by the trail
// table and repelled from cells already claimed in its occupancy ledger. One builder
// serves one candidate solution and is not safe for concurrent use.
type RouteBuilder struct {
	graph   *core.GridGraph
	trail   *PheromoneTable
	occ     *TemporalOccupancy
	rng     *randengine.Engine
	alpha   float64
	penalty float64
	bound   int

	// (1/cost)^beta for the two move costs
	etaOrth, etaDiag float64

	weights [8]float64
}

// NewRouteBuilder creates a builder with a fresh occupancy ledger.
func NewRouteBuilder(g *core.GridGraph, trail *PheromoneTable, rng *randengine.Engine, cfg Config) *RouteBuilder {
	return &RouteBuilder{
		graph:   g,
		trail:   trail,
		occ:     NewTemporalOccupancy(),
		rng:     rng,
		alpha:   cfg.Alpha,
		penalty: cfg.OccupiedPenalty,
		bound:   cfg.legStepBound(g.Len()),
		etaOrth: math.Pow(1/core.MoveOrth, cfg.Beta),
		etaDiag: math.Pow(1/core.MoveDiag, cfg.Beta),
	}
}

// Occupancy exposes the builder's ledger.
func (b *RouteBuilder) Occupancy() *TemporalOccupancy { return b.occ }

// Next draws the cell entered from u at timestep t. Each neighbor v is weighted by
//
//	penalty(t, v) * trail(u, v)^alpha * (1/cost(u, v))^beta
//
// where penalty is OccupiedPenalty for a claimed (t, v) and 1 otherwise.
func (b *RouteBuilder) Next(u core.Cell, t int) (core.Cell, error) {
	nbrs := b.graph.Neighbors(u)
	if len(nbrs) == 0 {
		return core.Cell{}, fmt.Errorf("%w: cell %v has no free neighbors", ErrStructuralInfeasibility, u)
	}
	w := b.weights[:len(nbrs)]
	for i, n := range nbrs {
		eta := b.etaOrth
		if n.Cost != core.MoveOrth {
			eta = b.etaDiag
		}
		tau := b.trail.Trail(core.Edge{From: u, To: n.Cell})
		if b.alpha != 1 {
			tau = math.Pow(tau, b.alpha)
		}
		p := 1.0
		if b.occ.Occupied(t, n.Cell) {
			p = b.penalty
		}
		w[i] = p * tau * eta
	}
	i, degenerate := b.rng.Choose(w)
	if degenerate {
		log.WithField("cell", u).WithField("t", t).Debug("degenerate transition weights, choosing uniformly")
	}
	return nbrs[i].Cell, nil
}

// BuildLeg walks from `from` until it enters `to`, starting at timestep t0. Every entered
// cell is claimed before the next step. The returned route ends at `to` and carries
// contiguous timesteps t0, t0+1, ...; it is empty when from == to.
func (b *RouteBuilder) BuildLeg(from, to core.Cell, t0 int) (core.Route, error) {
	if from == to {
		return nil, nil
	}
	var r core.Route
	cur := from
	for t := t0; t-t0 < b.bound; t++ {
		next, err := b.Next(cur, t)
		if err != nil {
			return nil, err
		}
		b.occ.Claim(t, next)
		r = append(r, core.Step{T: t, Cell: next})
		if next == to {
			return r, nil
		}
		cur = next
	}
	return nil, fmt.Errorf("%w: %v -> %v not reached within %d steps", ErrStructuralInfeasibility, from, to, b.bound)
}

// BuildRoute builds both legs of a and concatenates them.
func (b *RouteBuilder) BuildRoute(a *core.Agent) (core.Route, error) {
	var route core.Route
	for _, leg := range a.Legs() {
		r, err := b.BuildLeg(leg.From, leg.To, len(route))
		if err != nil {
			return nil, fmt.Errorf("agent %d %s leg: %w", a.ID, leg.Kind, err)
		}
		route = append(route, r...)
	}
	return route, nil
}

// BuildSolution builds a route for every agent in order, sharing this builder's ledger.
func (b *RouteBuilder) BuildSolution(agents []*core.Agent) (*core.Solution, error) {
	sol := core.NewSolution(len(agents))
	for i, a := range agents {
		r, err := b.BuildRoute(a)
		if err != nil {
			return nil, err
		}
		sol.Routes[i] = r
	}
	return sol, nil
}
